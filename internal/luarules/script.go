// Package luarules loads solitaire rulesets written in Lua.
//
// A script returns a table with a name, a layout function and a deal
// function, plus optional allow_drag, drop, setup and wording hooks. The
// Script type adapts that table to rules.Ruleset so scripted games sit in
// the registry next to the built-in ones.
package luarules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"example.com/pennyfarthing/internal/cards"
	apperrors "example.com/pennyfarthing/internal/errors"
	"example.com/pennyfarthing/internal/rules"
	"example.com/pennyfarthing/internal/zone"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Script is a ruleset backed by a Lua state. The registry shares one Script
// between sessions, so every call into Lua holds mu.
type Script struct {
	mu     sync.Mutex
	L      *lua.LState
	source string
	log    *zap.Logger

	name   string
	mod    *lua.LTable
	layout rules.Layout

	// dealing is set while deal runs; cards may only be turned by hand then.
	dealing bool
	// err is the last Go error raised into Lua by a binding.
	err error
	// closed is set by Close; hooks fail from then on.
	closed bool
}

var (
	_ rules.Ruleset     = (*Script)(nil)
	_ rules.DragAllower = (*Script)(nil)
	_ rules.DropHandler = (*Script)(nil)
	_ rules.SetupHook   = (*Script)(nil)
	_ rules.Worder      = (*Script)(nil)
)

// LoadFile loads the script at path.
func LoadFile(path string) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeBadScript, "read "+path, err)
	}
	return LoadString(filepath.Base(path), string(src))
}

// LoadString loads a script from source. source names the script in errors.
func LoadString(source, src string) (*Script, error) {
	s := &Script{L: newState(), source: source, log: zap.NewNop()}
	s.bind()

	fn, err := s.L.Load(strings.NewReader(src), source)
	if err != nil {
		s.L.Close()
		return nil, apperrors.Wrap(apperrors.CodeBadScript, "load "+source, err)
	}
	ret, err := s.call("load", fn, 1)
	if err != nil {
		s.L.Close()
		return nil, err
	}
	mod, ok := ret[0].(*lua.LTable)
	if !ok {
		s.L.Close()
		return nil, apperrors.Configuration(apperrors.CodeBadScript,
			source+": script must return a table", map[string]string{"script": source})
	}
	s.mod = mod

	if err := s.init(); err != nil {
		s.L.Close()
		return nil, err
	}
	return s, nil
}

func (s *Script) init() error {
	name, ok := s.mod.RawGetString("name").(lua.LString)
	if !ok || name == "" {
		return s.missing("name")
	}
	s.name = string(name)

	layoutFn := s.hook("layout")
	if layoutFn == nil {
		return s.missing("layout")
	}
	if s.hook("deal") == nil {
		return s.missing("deal")
	}

	ret, err := s.call("layout", layoutFn, 1)
	if err != nil {
		return err
	}
	tbl, ok := ret[0].(*lua.LTable)
	if !ok {
		return apperrors.Configuration(apperrors.CodeInvalidLayout,
			s.source+": layout must return a table", map[string]string{"script": s.source})
	}
	s.layout = toLayout(tbl)
	return nil
}

func (s *Script) missing(field string) error {
	return apperrors.Configuration(apperrors.CodeBadScript,
		s.source+": missing "+field, map[string]string{"script": s.source, "field": field})
}

// Close releases the Lua state.
func (s *Script) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}

func (s *Script) closedErr(hook string) error {
	return apperrors.Configuration(apperrors.CodeBadScript,
		s.source+": "+hook+": script was unloaded", map[string]string{"ruleset": s.name})
}

// Source returns the name the script was loaded under.
func (s *Script) Source() string { return s.source }

func (s *Script) Name() string { return s.name }

func (s *Script) RequestLayout() rules.Layout { return s.layout }

func (s *Script) RequestDeal(d *cards.Dealer, zones zone.Map) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.closedErr("deal")
	}
	s.dealing = true
	defer func() { s.dealing = false }()

	_, err := s.call("deal", s.hook("deal"), 0, s.dealerValue(d), s.zonesValue(zones))
	return err
}

func (s *Script) AllowDragEvent(dragged rules.Dragged) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.log.Warn("allow_drag on unloaded script", zap.String("ruleset", s.name))
		return false
	}
	fn := s.hook("allow_drag")
	if fn == nil {
		return true
	}
	ret, err := s.call("allow_drag", fn, 1, s.draggedValue(dragged))
	if err != nil {
		s.log.Warn("allow_drag failed", zap.String("ruleset", s.name), zap.Error(err))
		return false
	}
	return lua.LVAsBool(ret[0])
}

func (s *Script) DropEvent(t rules.Table, dragged rules.Dragged, dropped rules.Dropped) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.closedErr("drop")
	}
	fn := s.hook("drop")
	if fn == nil {
		return nil
	}
	ctl := s.tableValue(t)
	defer func() { ctl.Value = nil }()

	_, err := s.call("drop", fn, 0, ctl, s.draggedValue(dragged), s.droppedValue(dropped))
	return err
}

func (s *Script) Setup(t rules.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.closedErr("setup")
	}
	fn := s.hook("setup")
	if fn == nil {
		return nil
	}
	ctl := s.tableValue(t)
	defer func() { ctl.Value = nil }()

	_, err := s.call("setup", fn, 0, ctl)
	return err
}

// RequestRulesWording returns the script's wording, or "" without a wording
// hook.
func (s *Script) RequestRulesWording() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn := s.hook("wording")
	if fn == nil || s.closed {
		return ""
	}
	ret, err := s.call("wording", fn, 1)
	if err != nil {
		s.log.Warn("wording failed", zap.String("ruleset", s.name), zap.Error(err))
		return ""
	}
	return lua.LVAsString(ret[0])
}

func (s *Script) hook(name string) *lua.LFunction {
	if s.mod == nil {
		return nil
	}
	fn, _ := s.mod.RawGetString(name).(*lua.LFunction)
	return fn
}

// call runs fn in protected mode and returns exactly nret results. A Go error
// raised by a binding is returned in place of the Lua error that carried it.
func (s *Script) call(hook string, fn *lua.LFunction, nret int, args ...lua.LValue) ([]lua.LValue, error) {
	s.err = nil
	top := s.L.GetTop()
	defer s.L.SetTop(top)

	if err := s.L.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}, args...); err != nil {
		if s.err != nil {
			return nil, fmt.Errorf("%s: %s: %w", s.source, hook, s.err)
		}
		return nil, apperrors.Wrap(apperrors.CodeBadScript, s.source+": "+hook, err)
	}
	ret := make([]lua.LValue, nret)
	for i := range ret {
		ret[i] = s.L.Get(top + 1 + i)
	}
	return ret, nil
}

// LoadDir registers every *.lua script in dir, in name order. Scripts that
// fail to load or register are logged and skipped. A missing directory
// registers nothing. It returns the loaded scripts.
func LoadDir(reg *rules.Registry, dir string, logger *zap.Logger) ([]*Script, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.lua"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			logger.Info("no rules directory", zap.String("dir", dir))
			return nil, nil
		}
	}
	sort.Strings(paths)

	var out []*Script
	for _, path := range paths {
		s, err := LoadFile(path)
		if err != nil {
			logger.Warn("skipping ruleset script", zap.String("path", path), zap.Error(err))
			continue
		}
		s.log = logger.With(zap.String("script", s.source))
		if err := reg.Register(s); err != nil {
			logger.Warn("skipping ruleset script", zap.String("path", path), zap.Error(err))
			s.Close()
			continue
		}
		out = append(out, s)
	}
	logger.Info("ruleset scripts loaded", zap.String("dir", dir), zap.Int("count", len(out)))
	return out, nil
}
