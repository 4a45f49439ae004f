package subsystem

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type description struct {
	Name        string                  `yaml:"name" validate:"required"`
	Start       string                  `yaml:"start" validate:"required"`
	Target      string                  `yaml:"target"`
	Addresses   []addressDescription    `yaml:"addresses" validate:"dive"`
	Buffers     []bufferDescription     `yaml:"buffers" validate:"dive"`
	Actions     []actionDescription     `yaml:"actions" validate:"required,min=1,dive"`
	Transitions []transitionDescription `yaml:"transitions" validate:"dive"`
}

type addressDescription struct {
	Name  string `yaml:"name" validate:"required"`
	Width int    `yaml:"width" validate:"gte=0"`
	Value string `yaml:"value"`
}

type bufferDescription struct {
	Name        string `yaml:"name" validate:"required"`
	Kind        string `yaml:"kind" validate:"omitempty,oneof=unmapped mapped memory"`
	Ways        int    `yaml:"ways" validate:"gte=0"`
	Sets        int    `yaml:"sets" validate:"gte=0"`
	LineSize    uint64 `yaml:"lineSize"`
	Address     string `yaml:"address"`
	Index       string `yaml:"index"`
	Tag         string `yaml:"tag"`
	Replaceable bool   `yaml:"replaceable"`
	Parent      string `yaml:"parent"`
}

type actionDescription struct {
	Name   string `yaml:"name" validate:"required"`
	Buffer string `yaml:"buffer"`
}

type accessDescription struct {
	Buffer string `yaml:"buffer" validate:"required"`
	Event  string `yaml:"event"`
}

type guardDescription struct {
	Operation string `yaml:"operation"`
	Buffer    string `yaml:"buffer"`
	Event     string `yaml:"event"`
	Condition string `yaml:"condition"`
}

type transitionDescription struct {
	From     string              `yaml:"from" validate:"required"`
	To       string              `yaml:"to" validate:"required"`
	Guard    *guardDescription   `yaml:"guard"`
	Performs []accessDescription `yaml:"performs" validate:"dive"`
}

// LoadFile reads a YAML subsystem description from a file.
func LoadFile(filename string) (*Subsystem, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening subsystem description: %w", err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", filename, err)
	}

	return s, nil
}

// Load reads a YAML subsystem description.
func Load(r io.Reader) (*Subsystem, error) {
	d := description{}

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(&d); err != nil {
		return nil, fmt.Errorf("decoding subsystem description: %w", err)
	}

	if err := validator.New().Struct(d); err != nil {
		return nil, fmt.Errorf("invalid subsystem description: %w", err)
	}

	l := loader{
		d:         d,
		b:         NewBuilder(d.Name),
		addresses: make(map[string]AddressID),
		buffers:   make(map[string]BufferID),
		actions:   make(map[string]ActionID),
	}

	return l.load()
}

type loader struct {
	d         description
	b         *Builder
	addresses map[string]AddressID
	buffers   map[string]BufferID
	actions   map[string]ActionID
}

func (l *loader) load() (*Subsystem, error) {
	steps := []func() error{
		l.loadAddresses,
		l.loadBuffers,
		l.loadActions,
		l.loadTransitions,
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	start, ok := l.actions[l.d.Start]
	if !ok {
		return nil, fmt.Errorf("start action %q is not defined", l.d.Start)
	}

	l.b.SetStart(start)

	if l.d.Target != "" {
		target, ok := l.buffers[l.d.Target]
		if !ok {
			return nil, fmt.Errorf("target buffer %q is not defined",
				l.d.Target)
		}

		l.b.SetTargetBuffer(target)
	}

	s := l.b.Build()

	if cycle := s.FindCycle(); cycle != nil {
		names := make([]string, len(cycle))
		for i, id := range cycle {
			names[i] = s.Action(id).Name
		}

		return nil, fmt.Errorf("actions form a cycle: %s",
			strings.Join(names, " -> "))
	}

	return s, nil
}

func (l *loader) loadAddresses() error {
	for _, a := range l.d.Addresses {
		if _, dup := l.addresses[a.Name]; dup {
			return fmt.Errorf("address %q is defined twice", a.Name)
		}

		l.addresses[a.Name] = l.b.AddAddress(a.Name, a.Width, a.Value)
	}

	return nil
}

func (l *loader) loadBuffers() error {
	for _, bd := range l.d.Buffers {
		if _, dup := l.buffers[bd.Name]; dup {
			return fmt.Errorf("buffer %q is defined twice", bd.Name)
		}

		l.buffers[bd.Name] = BufferID(len(l.buffers))
	}

	bufs := make([]Buffer, 0, len(l.d.Buffers))

	for _, bd := range l.d.Buffers {
		buf, err := l.buffer(bd)
		if err != nil {
			return err
		}

		bufs = append(bufs, buf)
	}

	for _, buf := range bufs {
		l.b.AddBuffer(buf)
	}

	return nil
}

func (l *loader) buffer(bd bufferDescription) (Buffer, error) {
	buf := NewBuffer(bd.Name)
	buf.Index = bd.Index
	buf.Tag = bd.Tag
	buf.Replaceable = bd.Replaceable
	buf.LineSize = bd.LineSize

	if bd.Ways > 0 {
		buf.Ways = bd.Ways
	}

	if bd.Sets > 0 {
		buf.Sets = bd.Sets
	}

	switch bd.Kind {
	case "", "unmapped":
		buf.Kind = KindUnmapped
	case "mapped":
		buf.Kind = KindMapped
	case "memory":
		buf.Kind = KindMemory
	}

	if bd.Address != "" {
		id, ok := l.addresses[bd.Address]
		if !ok {
			return buf, fmt.Errorf("buffer %q uses undefined address %q",
				bd.Name, bd.Address)
		}

		buf.Address = id
	}

	if bd.Parent != "" {
		id, ok := l.buffers[bd.Parent]
		if !ok {
			return buf, fmt.Errorf("buffer %q has undefined parent %q",
				bd.Name, bd.Parent)
		}

		buf.Parent = id
	}

	return buf, nil
}

func (l *loader) loadActions() error {
	for _, ad := range l.d.Actions {
		if _, dup := l.actions[ad.Name]; dup {
			return fmt.Errorf("action %q is defined twice", ad.Name)
		}

		buffer := NoBuffer
		if ad.Buffer != "" {
			id, ok := l.buffers[ad.Buffer]
			if !ok {
				return fmt.Errorf("action %q uses undefined buffer %q",
					ad.Name, ad.Buffer)
			}

			buffer = id
		}

		l.actions[ad.Name] = l.b.AddAction(ad.Name, buffer)
	}

	return nil
}

func (l *loader) loadTransitions() error {
	for i, td := range l.d.Transitions {
		from, ok := l.actions[td.From]
		if !ok {
			return fmt.Errorf("transition %d leaves undefined action %q",
				i, td.From)
		}

		to, ok := l.actions[td.To]
		if !ok {
			return fmt.Errorf("transition %d enters undefined action %q",
				i, td.To)
		}

		guard, err := l.guard(td.Guard)
		if err != nil {
			return fmt.Errorf("transition %d: %w", i, err)
		}

		performs := make([]BufferAccess, 0, len(td.Performs))
		for _, pd := range td.Performs {
			access, err := l.access(pd.Buffer, pd.Event)
			if err != nil {
				return fmt.Errorf("transition %d: %w", i, err)
			}

			performs = append(performs, access)
		}

		l.b.AddTransition(from, to, guard, performs...)
	}

	return nil
}

func (l *loader) guard(gd *guardDescription) (*Guard, error) {
	if gd == nil {
		return nil, nil
	}

	op, err := ParseOperation(gd.Operation)
	if err != nil {
		return nil, err
	}

	g := &Guard{
		Operation: op,
		Condition: gd.Condition,
	}

	if gd.Buffer != "" {
		access, err := l.access(gd.Buffer, gd.Event)
		if err != nil {
			return nil, err
		}

		g.Access = &access
	}

	return g, nil
}

func (l *loader) access(buffer, event string) (BufferAccess, error) {
	id, ok := l.buffers[buffer]
	if !ok {
		return BufferAccess{}, fmt.Errorf("undefined buffer %q", buffer)
	}

	e, err := ParseBufferEvent(event)
	if err != nil {
		return BufferAccess{}, err
	}

	return BufferAccess{Buffer: id, Event: e}, nil
}
