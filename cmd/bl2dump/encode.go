package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/Oberacda/Borderlands2SaveEditor/internal/config"
	"github.com/Oberacda/Borderlands2SaveEditor/save"
)

// cborMode uses Core Deterministic Encoding so the same record always
// produces the same bytes.
var cborMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("bl2dump: CBOR encoder initialization failed: " + err.Error())
	}
	return mode
}()

// encodeRecord writes g in format. Several records written to one
// stream stay separable: JSON values are newline-terminated, YAML
// documents are separated by "---" and CBOR items are self-delimiting.
func encodeRecord(w io.Writer, format string, g *save.SaveGame) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(g)

	case config.FormatYAML:
		if _, err := io.WriteString(w, "---\n"); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(g); err != nil {
			return err
		}
		return enc.Close()

	case config.FormatCBOR:
		data, err := cborMode.Marshal(g)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err

	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
