package template

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fae-lang/fae/pkg/binding"
	ferrors "github.com/fae-lang/fae/pkg/errors"
)

func TestNewCompilesAndRenders(t *testing.T) {
	tmpl, err := New(context.Background(), "hello $(name)!")
	require.NoError(t, err)

	b := binding.New().With("name", binding.String{V: "ada"})
	out, err := tmpl.Render(b, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello ada!", out)
}

func TestNewReturnsInvalidTemplateOnBadSource(t *testing.T) {
	_, err := New(context.Background(), "$(bad!)")
	require.Error(t, err)
	var it *ferrors.InvalidTemplate
	require.ErrorAs(t, err, &it)
}

func TestProgramExposesCompiledCode(t *testing.T) {
	tmpl, err := New(context.Background(), "$(x)")
	require.NoError(t, err)
	require.NotNil(t, tmpl.Program())
	assert.NotEmpty(t, tmpl.Program().Code)
}

func TestRenderIsRepeatableWithDifferentBindings(t *testing.T) {
	tmpl, err := New(context.Background(), "$(if show)visible$(end)")
	require.NoError(t, err)

	out, err := tmpl.Render(binding.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, "", out)

	out, err = tmpl.Render(binding.New().With("show", binding.Bool{V: true}), nil)
	require.NoError(t, err)
	assert.Equal(t, "visible", out)
}
