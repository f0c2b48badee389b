package definitions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadScriptsFrom(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "extra/patrol.lua", aiScriptLua)
	writeFile(t, root, "extra/notes.txt", "not a script")

	store, loader, _ := newTestLoader(nil)
	scripts, err := loader.LoadScriptsFrom(openSource(t, root), "extra")
	require.NoError(t, err)
	require.Len(t, scripts, 1)
	assert.Equal(t, "patrol", scripts[0].Name)
	assert.Equal(t, "extra/patrol.lua", scripts[0].Path)

	_, ok := store.AIScript("patrol")
	assert.True(t, ok)
}

func TestLoadScriptsFrom_MissingDirWarnsOnly(t *testing.T) {
	root := t.TempDir()
	_, loader, logs := newTestLoader(nil)
	scripts, err := loader.LoadScriptsFrom(openSource(t, root), "extra")
	require.NoError(t, err)
	assert.Empty(t, scripts)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestLoadScriptsFrom_SealedStoreFails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "extra/patrol.lua", aiScriptLua)

	store, loader, _ := newTestLoader(nil)
	store.Seal()
	_, err := loader.LoadScriptsFrom(openSource(t, root), "extra")
	assert.ErrorIs(t, err, ErrSealed)
}

func TestIngestScript_TypeContracts(t *testing.T) {
	cases := []struct {
		name    string
		source  string
		wantErr string
	}{
		{
			name: "ai requires prepare",
			source: `
function define(s)
  s.name = "broken_ai"
  s.type = "ai"
end
`,
			wantErr: "prepare",
		},
		{
			name: "eventcondition requires check",
			source: `
function define(s)
  s.name = "cond"
  s.type = "eventcondition"
end
function run() end
`,
			wantErr: "check",
		},
		{
			name: "eventbranchlogic with check is valid",
			source: `
function define(s)
  s.name = "branch"
  s.type = "eventbranchlogic"
end
function check() return true end
`,
		},
		{
			name: "actiontransform requires transform",
			source: `
function define(s)
  s.name = "xform"
  s.type = "actiontransform"
end
`,
			wantErr: "transform",
		},
		{
			name: "eventtransform must not define prepare",
			source: `
function define(s)
  s.name = "xform"
  s.type = "eventtransform"
end
function transform() end
function prepare() end
`,
			wantErr: "must not define a prepare function",
		},
		{
			name: "webgame requires start",
			source: `
function define(s)
  s.name = "game"
  s.type = "webgame"
end
function start() end
`,
		},
		{
			name: "unknown type is fatal",
			source: `
function define(s)
  s.name = "odd"
  s.type = "mystery"
end
`,
			wantErr: "invalid type",
		},
		{
			name: "missing name is fatal",
			source: `
function define(s)
  s.type = "ai"
end
function prepare() end
`,
			wantErr: "does not declare a name",
		},
		{
			name:    "missing define is fatal",
			source:  `function prepare() end`,
			wantErr: "define",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, loader, _ := newTestLoader(nil)
			_, err := loader.ingestScript("test.lua", tc.source)
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestIngestScript_DuplicateNameFails(t *testing.T) {
	_, loader, _ := newTestLoader(nil)
	_, err := loader.ingestScript("a.lua", aiScriptLua)
	require.NoError(t, err)
	_, err = loader.ingestScript("b.lua", aiScriptLua)
	assert.ErrorIs(t, err, ErrDuplicate)
}
