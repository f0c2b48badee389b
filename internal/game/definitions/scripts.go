package definitions

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/eidolonmud/worlddata/internal/scripting"
)

const scriptExtension = ".lua"

// LoadScriptsFrom loads every script file under location into the store,
// returning the scripts added by this call. The main pipeline loads the
// default script location itself; this entry point exists for callers that
// stage extra script trees before sealing the store.
//
// Precondition: the store must be unsealed.
func (l *Loader) LoadScriptsFrom(src Source, location string) ([]*ServerScript, error) {
	return l.loadScripts(src, location)
}

// loadScripts evaluates and registers every .lua file under location,
// recursively, in lexical order. A script's declared type tag decides the
// callable entry points it must expose; a missing location is a warning.
func (l *Loader) loadScripts(src Source, location string) ([]*ServerScript, error) {
	_, isDir := src.Exists(location)
	if !isDir {
		l.logger.Warn("no scripts found", zap.String("path", location))
		return nil, nil
	}

	files, _, _, err := src.Listing(location, true)
	if err != nil {
		return nil, fmt.Errorf("listing scripts at %s: %w", location, err)
	}
	matched := files[:0:0]
	for _, f := range files {
		if strings.HasSuffix(f, scriptExtension) {
			matched = append(matched, f)
		}
	}
	sort.Strings(matched)

	var loaded []*ServerScript
	for _, path := range matched {
		data, err := src.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading script %s: %w", path, err)
		}
		script, err := l.ingestScript(path, string(data))
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, script)
	}

	if len(loaded) > 0 {
		l.logger.Debug("loaded scripts",
			zap.String("path", location),
			zap.Int("count", len(loaded)),
		)
	}
	return loaded, nil
}

// ingestScript evaluates one script source, enforces the per-type callable
// contract, and registers the result.
func (l *Loader) ingestScript(path, source string) (*ServerScript, error) {
	ev, err := scripting.Evaluate(source, l.instLimit)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", path, err)
	}
	if ev.Name == "" {
		return nil, fmt.Errorf("script %s does not declare a name", path)
	}

	switch strings.ToLower(ev.Type) {
	case "ai":
		if !ev.HasCallable("prepare") {
			return nil, fmt.Errorf("AI script %q in %s does not define a prepare function", ev.Name, path)
		}
	case "eventcondition", "eventbranchlogic":
		if !ev.HasCallable("check") {
			return nil, fmt.Errorf("script %q in %s does not define a check function", ev.Name, path)
		}
	case "actiontransform", "eventtransform":
		if !ev.HasCallable("transform") {
			return nil, fmt.Errorf("script %q in %s does not define a transform function", ev.Name, path)
		}
		if ev.HasCallable("prepare") {
			return nil, fmt.Errorf("transform script %q in %s must not define a prepare function", ev.Name, path)
		}
	case "actioncustom":
		if !ev.HasCallable("run") {
			return nil, fmt.Errorf("script %q in %s does not define a run function", ev.Name, path)
		}
	case "webgame":
		if !ev.HasCallable("start") {
			return nil, fmt.Errorf("script %q in %s does not define a start function", ev.Name, path)
		}
	default:
		return nil, fmt.Errorf("script %q in %s declares invalid type %q", ev.Name, path, ev.Type)
	}

	script := &ServerScript{
		Name:   ev.Name,
		Type:   ev.Type,
		Path:   path,
		Source: source,
	}
	if err := l.store.RegisterScript(script); err != nil {
		return nil, fmt.Errorf("script %s: %w", path, err)
	}
	return script, nil
}
