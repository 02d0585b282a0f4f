package generator

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/slmgo/scriptlm/internal/core/domain"
	"github.com/slmgo/scriptlm/internal/core/ports"
)

// Generator renders the downloadable script artifact. Plain issues ship the
// script source as-is; encoded issues wrap it in a loader stub that carries
// the license parameters and the base64 payload.
type Generator struct{}

func New() ports.ArtifactGenerator {
	return &Generator{}
}

func (g *Generator) Generate(ctx context.Context, script domain.Script, config domain.LicenseConfig) (*domain.GeneratedScript, error) {
	body := scriptBody(script)
	filename := script.ID + ".py"

	if !config.Encode {
		return &domain.GeneratedScript{Data: body, Filename: filename}, nil
	}

	var buf bytes.Buffer
	buf.WriteString("# -*- coding: utf-8 -*-\n")
	fmt.Fprintf(&buf, "SCRIPT_ID = %q\n", script.ID)
	if config.LicenseKey != nil {
		fmt.Fprintf(&buf, "LICENSE_KEY = %q\n", *config.LicenseKey)
	} else {
		buf.WriteString("LICENSE_KEY = None\n")
	}
	if config.Expires != nil {
		fmt.Fprintf(&buf, "LICENSE_EXPIRES = %q\n", config.Expires.Format("2006-01-02"))
	} else {
		buf.WriteString("LICENSE_EXPIRES = None\n")
	}
	fmt.Fprintf(&buf, "PAYLOAD = %q\n", base64.StdEncoding.EncodeToString(body))
	buf.WriteString("\n")
	buf.WriteString("import base64\n")
	buf.WriteString("exec(compile(base64.b64decode(PAYLOAD), SCRIPT_ID, 'exec'))\n")

	return &domain.GeneratedScript{Data: buf.Bytes(), Filename: filename}, nil
}

func scriptBody(script domain.Script) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", script.Name)
	if script.Description != "" {
		fmt.Fprintf(&buf, "# %s\n", script.Description)
	}
	buf.WriteString(`print("Hello World!")` + "\n")
	return buf.Bytes()
}
