package fixtureio_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunmore/ksr/internal/fixtureio"
)

const twoSquares = `<svg xmlns="http://www.w3.org/2000/svg">
  <polygon data-z="0" points="0,0 1,0 1,1 0,1"/>
  <polygon data-z="2.5" points="0,0 1,0 1,1 0,1"/>
</svg>`

func TestLoadReturnsOnePolygonPerElementAtItsOwnHeight(t *testing.T) {
	polys, err := fixtureio.Load(strings.NewReader(twoSquares))
	require.NoError(t, err)
	require.Len(t, polys, 2)
	assert.Equal(t, 0.0, polys[0].Points[0].Z)
	assert.Equal(t, 2.5, polys[1].Points[0].Z)
	assert.Len(t, polys[0].Points, 4)
}

func TestLoadRejectsDocumentWithNoPolygons(t *testing.T) {
	_, err := fixtureio.Load(strings.NewReader(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`))
	assert.Error(t, err)
}

func TestLoadRejectsMalformedPoints(t *testing.T) {
	bad := `<svg xmlns="http://www.w3.org/2000/svg"><polygon points="0,0 1,0 bad"/></svg>`
	_, err := fixtureio.Load(strings.NewReader(bad))
	assert.Error(t, err)
}
