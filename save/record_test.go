package save

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/Oberacda/Borderlands2SaveEditor/internal/savetest"
)

// sampleGame is the record encoded by savetest.SampleRecord.
func sampleGame() *SaveGame {
	return &SaveGame{
		PlayerClass:           savetest.SampleClass,
		PlayerLevel:           savetest.SampleLevel,
		ExperiencePoints:      savetest.SampleExperience,
		GeneralSkillPoints:    savetest.SampleGeneral,
		SpecialistSkillPoints: savetest.SampleSpecialist,
		Currency:              savetest.SampleCurrency,
		PlaythroughsCompleted: savetest.SamplePlaythroughs,
		Skills: []Skill{{
			Name:              savetest.SampleSkill,
			Grade:             savetest.SampleSkillGrade,
			EquippedSlotIndex: -1,
		}},
		Resources: []Resource{{
			Resource: savetest.SampleResource,
			Pool:     savetest.SamplePool,
			Amount:   savetest.SampleAmount,
		}},
		StatsData:             savetest.SampleStats,
		LastVisitedTeleporter: savetest.SampleTeleporter,
		Unknown: []UnknownField{{
			Number:   savetest.SampleUnknownField,
			WireType: int8(protowire.VarintType),
			Value:    []byte{savetest.SampleUnknownValue},
		}},
	}
}

func TestParseRecord(t *testing.T) {
	g, err := ParseRecord(savetest.SampleRecord())
	require.NoError(t, err)
	assert.Equal(t, sampleGame(), g)
}

func TestParseRecordEmpty(t *testing.T) {
	g, err := ParseRecord(nil)
	require.NoError(t, err)
	assert.Equal(t, &SaveGame{}, g)
}

func TestParseRecordUnpackedCurrency(t *testing.T) {
	var b []byte
	for _, v := range []uint64{5, 6} {
		b = protowire.AppendTag(b, fieldCurrency, protowire.VarintType)
		b = protowire.AppendVarint(b, v)
	}
	g, err := ParseRecord(b)
	require.NoError(t, err)
	assert.Equal(t, []int32{5, 6}, g.Currency)
}

func TestParseRecordWrongWireTypeIsUnknown(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, fieldPlayerClass, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, 99)
	g, err := ParseRecord(b)
	require.NoError(t, err)
	assert.Empty(t, g.PlayerClass)
	require.Len(t, g.Unknown, 1)
	assert.Equal(t, int32(fieldPlayerClass), g.Unknown[0].Number)
	assert.Equal(t, []byte{99, 0, 0, 0}, g.Unknown[0].Value)
}

func TestParseRecordMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"truncated varint", []byte{0x10, 0x80}},
		{"truncated bytes", []byte{0x0a, 0x05, 'a'}},
		{"zero field number", []byte{0x00, 0x01}},
		{"bad nested message", append([]byte{0x42, 0x02}, 0x0a, 0x09)},
		{"bad packed currency", []byte{0x32, 0x01, 0x80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecord(tt.data)
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}
