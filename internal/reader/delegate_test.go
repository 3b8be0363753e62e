package reader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loomkit/loom/internal/document"
	"github.com/loomkit/loom/internal/registry"
)

func TestSplitMultiValue(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{"a; b,  c", []string{"a", "b", "c"}},
		{" ,; ", nil},
	}
	for _, tt := range tests {
		got := splitMultiValue(tt.in)
		if tt.want == nil {
			require.Empty(t, got, tt.in)
			continue
		}
		require.Equal(t, tt.want, got, tt.in)
	}
}

type recordingHandler struct {
	parsed    []string
	decorated []string
	parseErr  error
	lazify    bool
}

func (h *recordingHandler) Parse(n *document.Node, ctx *Context) error {
	h.parsed = append(h.parsed, n.Tag)
	return h.parseErr
}

func (h *recordingHandler) Decorate(n *document.Node, holder *registry.Holder, ctx *Context) (*registry.Holder, error) {
	h.decorated = append(h.decorated, n.Tag)
	if !h.lazify {
		return holder, nil
	}
	def, err := registry.NewDefinition(holder.Definition().TypeName()).
		Scope(holder.Definition().Scope()).
		Lazy(true).
		Source(holder.Definition().Source()).
		Build()
	if err != nil {
		return nil, err
	}
	return holder.WithDefinition(def), nil
}

func TestLoad_CustomElementDispatchedToHandler(t *testing.T) {
	h := &recordingHandler{}
	r, _ := newReader(t, map[string]string{
		"app.xml": `<components xmlns="https://loomkit.dev/schema/components"
				xmlns:x="https://example.org/schema/custom">
			<x:widget size="large"/>
		</components>`,
	}, WithNamespaceHandler("https://example.org/schema/custom", h))

	result, err := r.LoadLocations(context.Background(), "fs:app.xml")
	require.NoError(t, err)
	require.Empty(t, result.Problems)
	require.Equal(t, []string{"widget"}, h.parsed)
}

func TestLoad_UnknownNamespaceIsNonFatal(t *testing.T) {
	r, reg := newReader(t, map[string]string{
		"app.xml": `<components xmlns="https://loomkit.dev/schema/components"
				xmlns:x="https://example.org/schema/unknown">
			<x:widget/>
			<component name="svc" type="demo.Svc"/>
		</components>`,
	})

	result, err := r.LoadLocations(context.Background(), "fs:app.xml")
	require.NoError(t, err)
	require.Len(t, result.Problems, 1)
	require.Contains(t, result.Problems[0].Message, "namespace handler")
	require.True(t, reg.Contains("svc"))
}

func TestLoad_CustomChildDecoratesComponent(t *testing.T) {
	h := &recordingHandler{lazify: true}
	r, reg := newReader(t, map[string]string{
		"app.xml": `<components xmlns="https://loomkit.dev/schema/components"
				xmlns:x="https://example.org/schema/custom">
			<component name="svc" type="demo.Svc">
				<x:lazy-init/>
			</component>
		</components>`,
	}, WithNamespaceHandler("https://example.org/schema/custom", h))

	result, err := r.LoadLocations(context.Background(), "fs:app.xml")
	require.NoError(t, err)
	require.Empty(t, result.Problems)
	require.Equal(t, []string{"lazy-init"}, h.decorated)

	def, err := reg.Get("svc")
	require.NoError(t, err)
	require.True(t, def.Lazy())
	require.Equal(t, "demo.Svc", def.TypeName())
}

func TestLoad_CustomAttributeDecoratesComponent(t *testing.T) {
	h := &recordingHandler{}
	r, reg := newReader(t, map[string]string{
		"app.xml": `<components xmlns="https://loomkit.dev/schema/components"
				xmlns:x="https://example.org/schema/custom">
			<component name="svc" type="demo.Svc" x:mark="yes"/>
		</components>`,
	}, WithNamespaceHandler("https://example.org/schema/custom", h))

	_, err := r.LoadLocations(context.Background(), "fs:app.xml")
	require.NoError(t, err)
	// The component element itself is handed to the decorator.
	require.Equal(t, []string{"component"}, h.decorated)
	require.True(t, reg.Contains("svc"))
}

func TestLoad_DecorationFailureKeepsUndecoratedDefinition(t *testing.T) {
	h := &recordingHandler{}
	r, reg := newReader(t, map[string]string{
		"app.xml": `<components xmlns="https://loomkit.dev/schema/components"
				xmlns:x="https://example.org/schema/custom">
			<component name="svc" type="demo.Svc">
				<x:broken/>
			</component>
		</components>`,
	}, WithNamespaceHandler("https://example.org/schema/custom", &failingDecorator{h}))

	result, err := r.LoadLocations(context.Background(), "fs:app.xml")
	require.NoError(t, err)
	require.Len(t, result.Problems, 1)

	def, err := reg.Get("svc")
	require.NoError(t, err)
	require.False(t, def.Lazy())
}

type failingDecorator struct {
	*recordingHandler
}

func (f *failingDecorator) Decorate(n *document.Node, holder *registry.Holder, ctx *Context) (*registry.Holder, error) {
	return nil, errDecorate
}

var errDecorate = errors.New("decoration exploded")
