package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/jarlink/internal/model"
)

const testSnapshot = `
options:
  strategy: parent-first
  release: 17
  ignore-missing-annotations: true
runtime:
  - file: rt.jar
    module:
      name: java.base
      exports:
        java.lang:
    classes:
      - name: java.lang.Object
        access: [public]
      - name: java.lang.String
        access: [public, final]
classpath:
  - file: app.jar
    size: 1024
    checksum: deadbeef
    releases: [11]
    manifest:
      Main-Class: app.Main
    resources:
      - {name: META-INF/MANIFEST.MF, checksum: aa}
    classes:
      - name: app.Main
        access: [public]
        version: 55
        fields:
          - {name: count, type: I, access: [private, static]}
        methods:
          - {name: main, desc: "([Ljava/lang/String;)V", access: [public, static]}
        refs:
          - class: lib.Util
          - class: lib.Plugin
            reflective: true
          - annotation: lib.Marker
          - field: lib.Util.LIMIT
            type: I
            static: true
          - method: lib.Util.run
            desc: ()V
            interface: true
          - method: <init>
            owner: lib.Util
            desc: ()V
      - name: app.Main
        release: 11
        version: 55
  - file: lib.jar
    module:
      name: lib
      requires: [java.base]
      exports:
        lib: []
        lib.spi: [app]
      opens:
        lib.internal:
    classes:
      - name: lib.Util
        access: [public, interface]
        super: java.lang.Object
        permits: [lib.Impl]
`

func TestDecode_Full(t *testing.T) {
	t.Parallel()
	s, err := Decode(strings.NewReader(testSnapshot))
	require.NoError(t, err)

	assert.Equal(t, Options{Strategy: "parent-first", Release: 17, IgnoreMissingAnnotations: true}, s.Options)
	require.Len(t, s.Runtime, 1)
	require.Len(t, s.Classpath, 2)
	assert.Empty(t, s.Provided)

	src, err := s.Build()
	require.NoError(t, err)
	require.Len(t, src.Runtime, 1)
	require.Len(t, src.Classpath, 2)

	app := src.Classpath[0]
	assert.Equal(t, "app.jar", app.FileName)
	assert.Equal(t, int64(1024), app.Size)
	assert.Equal(t, "deadbeef", app.Checksum)
	assert.True(t, app.IsMultiRelease())
	assert.Equal(t, "app.Main", app.Manifest["Main-Class"])
	_, ok := app.Resource("META-INF/MANIFEST.MF")
	assert.True(t, ok)
	assert.Len(t, app.Classes(), 2)

	main := app.Classes()[0]
	assert.Equal(t, "app.Main", main.Name)
	assert.Equal(t, model.ObjectClass, main.SuperName)
	assert.Equal(t, 55, main.MajorVersion)
	require.NotNil(t, main.Field("count"))
	assert.True(t, main.Field("count").IsStatic())
	require.NotNil(t, main.Method("main", "([Ljava/lang/String;)V"))

	require.Len(t, main.Refs, 6)
	assert.Equal(t, model.ClassRef("lib.Util"), main.Refs[0])
	assert.True(t, main.Refs[1].Reflective)
	assert.Equal(t, model.AnnotationRef("lib.Marker"), main.Refs[2])
	assert.Equal(t, model.FieldRef("lib.Util", "LIMIT", "I", true, false), main.Refs[3])
	assert.Equal(t, model.MethodRef("lib.Util", "run", "()V", true, false), main.Refs[4])
	assert.Equal(t, model.MethodRef("lib.Util", "<init>", "()V", false, false), main.Refs[5])

	lib := src.Classpath[1]
	require.True(t, lib.Module.IsNamed())
	assert.True(t, lib.Module.IsExported("lib", model.AllUnnamed))
	assert.True(t, lib.Module.IsExported("lib.spi", "app"))
	assert.False(t, lib.Module.IsExported("lib.spi", "other"))
	assert.True(t, lib.Module.IsOpen("lib.internal", "anyone"))

	util := lib.Class("lib.Util")
	require.NotNil(t, util)
	assert.True(t, util.IsInterface())
	assert.True(t, util.IsSealed())

	object := src.Runtime[0].Class(model.ObjectClass)
	require.NotNil(t, object)
	assert.Empty(t, object.SuperName)
	assert.Equal(t, 52, object.MajorVersion)
	assert.True(t, src.Runtime[0].Module.IsExported("java.lang", "app"))
}

func TestBuild_FreshValues(t *testing.T) {
	t.Parallel()
	s, err := Decode(strings.NewReader(testSnapshot))
	require.NoError(t, err)

	first, err := s.Build()
	require.NoError(t, err)
	second, err := s.Build()
	require.NoError(t, err)
	assert.NotSame(t, first.Classpath[0], second.Classpath[0])
	assert.NotSame(t, first.Classpath[0].Class("app.Main"), second.Classpath[0].Class("app.Main"))
}

func TestDecode_JSON(t *testing.T) {
	t.Parallel()
	s, err := Decode(strings.NewReader(`{"classpath": [{"file": "a.jar", "classes": [{"name": "a.A", "refs": [{"class": "b.B"}]}]}]}`))
	require.NoError(t, err)
	src, err := s.Build()
	require.NoError(t, err)
	require.Len(t, src.Classpath, 1)
	assert.Equal(t, []model.Ref{model.ClassRef("b.B")}, src.Classpath[0].Class("a.A").Refs)
}

func TestDecode_Empty(t *testing.T) {
	t.Parallel()
	s, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	src, err := s.Build()
	require.NoError(t, err)
	assert.Empty(t, src.Classpath)
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown key", "classpth: []", "snapshot: decode"},
		{"bad type", "classpath: {file: a.jar}", "snapshot: decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(strings.NewReader(tt.input))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		check func(t *testing.T, err error)
	}{
		{
			name: "ref with two targets",
			input: `
classpath:
  - file: a.jar
    classes:
      - name: a.A
        refs:
          - {class: b.B, method: b.B.run}
`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrInvalidRef)
				assert.ErrorContains(t, err, "archive a.jar: class a.A: ref 0")
			},
		},
		{
			name: "ref without target",
			input: `
classpath:
  - file: a.jar
    classes:
      - name: a.A
        refs:
          - {static: true}
`,
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrInvalidRef) },
		},
		{
			name: "member ref without owner",
			input: `
classpath:
  - file: a.jar
    classes:
      - name: a.A
        refs:
          - {field: count, type: I}
`,
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, model.ErrInvalidReference) },
		},
		{
			name: "class without name",
			input: `
classpath:
  - file: a.jar
    classes:
      - access: [public]
`,
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, model.ErrInvalidClass) },
		},
		{
			name: "archive without file",
			input: `
provided:
  - classes: []
`,
			check: func(t *testing.T, err error) { assert.ErrorContains(t, err, "empty file name") },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := Decode(strings.NewReader(tt.input))
			require.NoError(t, err)
			_, err = s.Build()
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSnapshot), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Classpath, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "snapshot: open")
}
