package images

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestGetOpenAPISpec(t *testing.T) {
	require.Empty(t, GetOpenAPISpec("", "Images"))
	require.Empty(t, GetOpenAPISpec("/images", ""))

	spec := GetOpenAPISpec("/store/images/", "Images")
	require.False(t, strings.Contains(spec, "/store/images/:"))

	var paths map[string]map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(spec), &paths))
	require.Contains(t, paths, "/health")
	require.Contains(t, paths, "/store/images")
	require.Contains(t, paths, "/store/images/{imageId}")

	item := paths["/store/images/{imageId}"]
	for _, method := range []string{"get", "head", "delete", "parameters"} {
		require.Contains(t, item, method)
	}
	require.NotContains(t, item["get"], "security")
	require.Contains(t, item["delete"], "security")
}
