package save

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the save record message.
const (
	fieldPlayerClass           protowire.Number = 1
	fieldPlayerLevel           protowire.Number = 2
	fieldExperiencePoints      protowire.Number = 3
	fieldGeneralSkillPoints    protowire.Number = 4
	fieldSpecialistSkillPoints protowire.Number = 5
	fieldCurrency              protowire.Number = 6
	fieldPlaythroughsCompleted protowire.Number = 7
	fieldSkillData             protowire.Number = 8
	fieldResourceData          protowire.Number = 11
	fieldStatsData             protowire.Number = 15
	fieldLastVisitedTeleporter protowire.Number = 17
)

// SaveGame is the decoded player record. Fields the decoder does not
// model are kept in Unknown with their raw wire bytes.
type SaveGame struct {
	PlayerClass           string         `json:"player_class" yaml:"player_class"`
	PlayerLevel           int32          `json:"player_level" yaml:"player_level"`
	ExperiencePoints      int32          `json:"experience_points" yaml:"experience_points"`
	GeneralSkillPoints    int32          `json:"general_skill_points" yaml:"general_skill_points"`
	SpecialistSkillPoints int32          `json:"specialist_skill_points" yaml:"specialist_skill_points"`
	Currency              []int32        `json:"currency,omitempty" yaml:"currency,omitempty"`
	PlaythroughsCompleted int32          `json:"playthroughs_completed" yaml:"playthroughs_completed"`
	Skills                []Skill        `json:"skills,omitempty" yaml:"skills,omitempty"`
	Resources             []Resource     `json:"resources,omitempty" yaml:"resources,omitempty"`
	StatsData             []byte         `json:"stats_data,omitempty" yaml:"stats_data,omitempty"`
	LastVisitedTeleporter string         `json:"last_visited_teleporter,omitempty" yaml:"last_visited_teleporter,omitempty"`
	Unknown               []UnknownField `json:"unknown,omitempty" yaml:"unknown,omitempty"`
}

// Skill is one entry of the skill tree.
type Skill struct {
	Name              string `json:"name" yaml:"name"`
	Grade             int32  `json:"grade" yaml:"grade"`
	GradePoints       int32  `json:"grade_points" yaml:"grade_points"`
	EquippedSlotIndex int32  `json:"equipped_slot_index" yaml:"equipped_slot_index"`
}

// Resource is an ammunition or consumable pool.
type Resource struct {
	Resource     string  `json:"resource" yaml:"resource"`
	Pool         string  `json:"pool" yaml:"pool"`
	Amount       float32 `json:"amount" yaml:"amount"`
	UpgradeLevel int32   `json:"upgrade_level" yaml:"upgrade_level"`
}

// UnknownField is a top-level field preserved verbatim. Value holds the
// field's wire-encoded value without its tag.
type UnknownField struct {
	Number   int32  `json:"number" yaml:"number"`
	WireType int8   `json:"wire_type" yaml:"wire_type"`
	Value    []byte `json:"value" yaml:"value"`
}

// RecordParser turns a decoded payload into a SaveGame.
type RecordParser interface {
	ParseRecord(data []byte) (*SaveGame, error)
}

// ProtoParser parses the protobuf wire encoding of the save record.
type ProtoParser struct{}

// ParseRecord implements RecordParser.
func (ProtoParser) ParseRecord(data []byte) (*SaveGame, error) {
	return ParseRecord(data)
}

// field is one consumed key/value pair. raw is the value without the tag.
type field struct {
	num protowire.Number
	typ protowire.Type
	raw []byte
}

// walkFields calls fn for every field of a message encoding.
func walkFields(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: tag: %w", ErrMalformedRecord, protowire.ParseError(n))
		}
		b = b[n:]
		m := protowire.ConsumeFieldValue(num, typ, b)
		if m < 0 {
			return fmt.Errorf("%w: field %d: %w", ErrMalformedRecord, num, protowire.ParseError(m))
		}
		if err := fn(field{num: num, typ: typ, raw: b[:m]}); err != nil {
			return err
		}
		b = b[m:]
	}
	return nil
}

// Values below were already bounds-checked by ConsumeFieldValue, so the
// accessors only need the wire type to match.

func (f field) asInt32() (int32, bool) {
	if f.typ != protowire.VarintType {
		return 0, false
	}
	v, _ := protowire.ConsumeVarint(f.raw)
	return int32(v), true
}

func (f field) asBytes() ([]byte, bool) {
	if f.typ != protowire.BytesType {
		return nil, false
	}
	v, _ := protowire.ConsumeBytes(f.raw)
	return v, true
}

func (f field) asFloat32() (float32, bool) {
	if f.typ != protowire.Fixed32Type {
		return 0, false
	}
	v, _ := protowire.ConsumeFixed32(f.raw)
	return math.Float32frombits(v), true
}

// ParseRecord decodes the protobuf wire encoding of a save record.
// A field with a known number but an unexpected wire type is treated as
// unknown, as protobuf decoders do.
func ParseRecord(data []byte) (*SaveGame, error) {
	g := &SaveGame{}
	err := walkFields(data, func(f field) error {
		known := true
		switch f.num {
		case fieldPlayerClass:
			v, ok := f.asBytes()
			g.PlayerClass, known = string(v), ok
		case fieldPlayerLevel:
			g.PlayerLevel, known = f.asInt32()
		case fieldExperiencePoints:
			g.ExperiencePoints, known = f.asInt32()
		case fieldGeneralSkillPoints:
			g.GeneralSkillPoints, known = f.asInt32()
		case fieldSpecialistSkillPoints:
			g.SpecialistSkillPoints, known = f.asInt32()
		case fieldCurrency:
			if f.typ != protowire.VarintType && f.typ != protowire.BytesType {
				known = false
				break
			}
			values, err := f.packedInt32()
			if err != nil {
				return err
			}
			g.Currency = append(g.Currency, values...)
		case fieldPlaythroughsCompleted:
			g.PlaythroughsCompleted, known = f.asInt32()
		case fieldSkillData:
			v, ok := f.asBytes()
			if !ok {
				known = false
				break
			}
			s, err := parseSkill(v)
			if err != nil {
				return err
			}
			g.Skills = append(g.Skills, s)
		case fieldResourceData:
			v, ok := f.asBytes()
			if !ok {
				known = false
				break
			}
			r, err := parseResource(v)
			if err != nil {
				return err
			}
			g.Resources = append(g.Resources, r)
		case fieldStatsData:
			v, ok := f.asBytes()
			g.StatsData, known = append([]byte(nil), v...), ok
		case fieldLastVisitedTeleporter:
			v, ok := f.asBytes()
			g.LastVisitedTeleporter, known = string(v), ok
		default:
			known = false
		}
		if !known {
			g.Unknown = append(g.Unknown, UnknownField{
				Number:   int32(f.num),
				WireType: int8(f.typ),
				Value:    append([]byte(nil), f.raw...),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// packedInt32 accepts both the packed and the one-value-per-tag encoding
// of a repeated int32.
func (f field) packedInt32() ([]int32, error) {
	switch f.typ {
	case protowire.VarintType:
		v, _ := f.asInt32()
		return []int32{v}, nil
	case protowire.BytesType:
		b, _ := f.asBytes()
		var out []int32
		for len(b) > 0 {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: packed field %d: %w", ErrMalformedRecord, f.num, protowire.ParseError(n))
			}
			out = append(out, int32(v))
			b = b[n:]
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: field %d has wire type %d", ErrMalformedRecord, f.num, f.typ)
}

func parseSkill(b []byte) (Skill, error) {
	var s Skill
	err := walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			v, _ := f.asBytes()
			s.Name = string(v)
		case 2:
			s.Grade, _ = f.asInt32()
		case 3:
			s.GradePoints, _ = f.asInt32()
		case 4:
			s.EquippedSlotIndex, _ = f.asInt32()
		}
		return nil
	})
	return s, err
}

func parseResource(b []byte) (Resource, error) {
	var r Resource
	err := walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			v, _ := f.asBytes()
			r.Resource = string(v)
		case 2:
			v, _ := f.asBytes()
			r.Pool = string(v)
		case 3:
			r.Amount, _ = f.asFloat32()
		case 4:
			r.UpgradeLevel, _ = f.asInt32()
		}
		return nil
	})
	return r, err
}
