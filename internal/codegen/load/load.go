// Package load reads YAML peripheral descriptions and resolves them into
// the model the generators consume.
//
// A description names the peripheral and lists its registers in address
// order. Register arrays carry a count, fields carry a bit position or an
// inclusive "high:low" range:
//
//	name: pwm
//	description: Pulse width modulated output
//	registers:
//	  - name: duty_cycle
//	    offset: 0x0
//	    fields:
//	      - name: value
//	        bits: "7:0"
//	  - name: period
//	    offset: 0x4
package load

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/marnovandermaas/sunburst/internal/codegen/meta"
)

type rawPeripheral struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Registers   []rawRegister `yaml:"registers"`
}

type rawRegister struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Offset      uint32     `yaml:"offset"`
	Count       uint32     `yaml:"count"`
	Fields      []rawField `yaml:"fields"`
}

type rawField struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Bits        bitSpec `yaml:"bits"`
}

// bitSpec accepts both a bare integer and a quoted "high:low" range.
type bitSpec string

func (b *bitSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("bits must be a scalar, got %s", node.Tag)
	}
	*b = bitSpec(node.Value)
	return nil
}

// Names are snake_case in the description; each generator derives its own
// spelling from them.
var nameRE = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// File loads and resolves the description at path.
func File(path string) (*meta.Peripheral, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read description: %w", err)
	}
	p, err := Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Bytes resolves a description held in memory. Unknown YAML keys are
// rejected so typos surface as errors rather than silently dropped
// registers.
func Bytes(data []byte) (*meta.Peripheral, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var raw rawPeripheral
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse description: %w", err)
	}
	return resolve(&raw)
}

func resolve(raw *rawPeripheral) (*meta.Peripheral, error) {
	if err := checkName(raw.Name); err != nil {
		return nil, fmt.Errorf("peripheral: %w", err)
	}
	if len(raw.Registers) == 0 {
		return nil, fmt.Errorf("peripheral %s: no registers", raw.Name)
	}

	p := &meta.Peripheral{
		Name:        raw.Name,
		Description: raw.Description,
		Registers:   make([]meta.Register, 0, len(raw.Registers)),
	}

	seen := make(map[string]bool, len(raw.Registers))
	var cursor uint32
	for i, rr := range raw.Registers {
		reg, err := resolveRegister(&rr)
		if err != nil {
			if rr.Name != "" {
				return nil, fmt.Errorf("register %s: %w", rr.Name, err)
			}
			return nil, fmt.Errorf("register %d: %w", i, err)
		}
		if seen[reg.Name] {
			return nil, fmt.Errorf("register %s: duplicate name", reg.Name)
		}
		seen[reg.Name] = true
		if i > 0 && reg.Offset < cursor {
			return nil, fmt.Errorf("register %s: offset %#x overlaps %s",
				reg.Name, reg.Offset, p.Registers[i-1].Name)
		}
		cursor = reg.End()
		p.Registers = append(p.Registers, reg)
	}
	return p, nil
}

func resolveRegister(rr *rawRegister) (meta.Register, error) {
	reg := meta.Register{
		Name:        rr.Name,
		Description: rr.Description,
		Offset:      rr.Offset,
		Count:       rr.Count,
	}
	if err := checkName(rr.Name); err != nil {
		return reg, err
	}
	if rr.Offset%4 != 0 {
		return reg, fmt.Errorf("offset %#x is not word aligned", rr.Offset)
	}
	if rr.Count == 0 {
		reg.Count = 1
	}

	seen := make(map[string]bool, len(rr.Fields))
	var used uint32
	for _, rf := range rr.Fields {
		f, err := resolveField(&rf)
		if err != nil {
			if rf.Name != "" {
				return reg, fmt.Errorf("field %s: %w", rf.Name, err)
			}
			return reg, err
		}
		if seen[f.Name] {
			return reg, fmt.Errorf("field %s: duplicate name", f.Name)
		}
		seen[f.Name] = true
		if used&f.Mask() != 0 {
			return reg, fmt.Errorf("field %s: bits %s overlap an earlier field", f.Name, rf.Bits)
		}
		used |= f.Mask()
		reg.Fields = append(reg.Fields, f)
	}
	return reg, nil
}

func resolveField(rf *rawField) (meta.Field, error) {
	f := meta.Field{Name: rf.Name, Description: rf.Description}
	if err := checkName(rf.Name); err != nil {
		return f, err
	}
	high, low, err := parseBits(string(rf.Bits))
	if err != nil {
		return f, err
	}
	f.High, f.Low = high, low
	return f, nil
}

func parseBits(spec string) (high, low uint32, err error) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return 0, 0, errors.New("missing bits")
	}

	hi, lo, ranged := strings.Cut(s, ":")
	if !ranged {
		lo = hi
	}
	high64, err := strconv.ParseUint(strings.TrimSpace(hi), 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad bit range %q", spec)
	}
	low64, err := strconv.ParseUint(strings.TrimSpace(lo), 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad bit range %q", spec)
	}
	if high64 > 31 {
		return 0, 0, fmt.Errorf("bit %d is outside a 32-bit register", high64)
	}
	if low64 > high64 {
		return 0, 0, fmt.Errorf("bit range %q is reversed, want high:low", spec)
	}
	return uint32(high64), uint32(low64), nil
}

func checkName(name string) error {
	if name == "" {
		return errors.New("missing name")
	}
	if !nameRE.MatchString(name) {
		return fmt.Errorf("name %q is not lower snake_case", name)
	}
	return nil
}
