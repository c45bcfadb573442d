package savetest

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Values encoded by SampleRecord.
const (
	SampleClass        = "GD_Siren.Character.CharClass_Siren"
	SampleLevel        = 31
	SampleExperience   = 1044020
	SampleGeneral      = 2
	SampleSpecialist   = 0
	SamplePlaythroughs = 1
	SampleTeleporter   = "Sanctuary_P"
	SampleSkill        = "GD_Siren_Skills.Motion.Phaselock"
	SampleSkillGrade   = 1
	SampleResource     = "D_Resources.AmmoResources.Ammo_Repeater_Pistol"
	SamplePool         = "D_Resourcepools.AmmoPools.Ammo_Repeater_Pistol_Pool"
	SampleAmount       = float32(204.5)
	SampleUnknownField = 19
	SampleUnknownValue = 7
)

// SampleCurrency is the currency list encoded by SampleRecord.
var SampleCurrency = []int32{125034, 42, 3}

// SampleStats is the opaque stats blob encoded by SampleRecord.
var SampleStats = []byte{0x01, 0x02, 0x03, 0xfe}

// SampleRecord returns a protobuf-encoded save record with the Sample
// values, including one field number the decoder does not know.
func SampleRecord() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, SampleClass)
	b = appendVarintField(b, 2, SampleLevel)
	b = appendVarintField(b, 3, SampleExperience)
	b = appendVarintField(b, 4, SampleGeneral)
	b = appendVarintField(b, 5, SampleSpecialist)

	var packed []byte
	for _, c := range SampleCurrency {
		packed = protowire.AppendVarint(packed, uint64(c))
	}
	b = protowire.AppendTag(b, 6, protowire.BytesType)
	b = protowire.AppendBytes(b, packed)

	b = appendVarintField(b, 7, SamplePlaythroughs)

	var skill []byte
	skill = protowire.AppendTag(skill, 1, protowire.BytesType)
	skill = protowire.AppendString(skill, SampleSkill)
	skill = appendVarintField(skill, 2, SampleSkillGrade)
	skill = appendVarintField(skill, 4, -1)
	b = protowire.AppendTag(b, 8, protowire.BytesType)
	b = protowire.AppendBytes(b, skill)

	var resource []byte
	resource = protowire.AppendTag(resource, 1, protowire.BytesType)
	resource = protowire.AppendString(resource, SampleResource)
	resource = protowire.AppendTag(resource, 2, protowire.BytesType)
	resource = protowire.AppendString(resource, SamplePool)
	resource = protowire.AppendTag(resource, 3, protowire.Fixed32Type)
	resource = protowire.AppendFixed32(resource, math.Float32bits(SampleAmount))
	b = protowire.AppendTag(b, 11, protowire.BytesType)
	b = protowire.AppendBytes(b, resource)

	b = protowire.AppendTag(b, 15, protowire.BytesType)
	b = protowire.AppendBytes(b, SampleStats)
	b = protowire.AppendTag(b, 17, protowire.BytesType)
	b = protowire.AppendString(b, SampleTeleporter)
	b = appendVarintField(b, SampleUnknownField, SampleUnknownValue)
	return b
}

func appendVarintField(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}
