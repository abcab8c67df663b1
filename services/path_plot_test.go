package services

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"slam-backend/algorithms"
	"slam-backend/models"
)

func TestRenderPathPNG(t *testing.T) {
	b := models.DefaultBoundary
	agent := &models.AgentPosition{X: 150, Y: 450}
	path, err := algorithms.Generate(models.PathConfig{Algorithm: models.AlgorithmLawnmower, StartCorner: models.CornerTopLeft}, b, agent)
	require.NoError(t, err)

	data, err := RenderPathPNG(b, path, agent, 6*vg.Inch, 4*vg.Inch)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")))

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
	assert.Positive(t, img.Bounds().Dy())
}

func TestRenderPathPNG_EmptyPath(t *testing.T) {
	data, err := RenderPathPNG(models.DefaultBoundary, nil, nil, 4*vg.Inch, 3*vg.Inch)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}
