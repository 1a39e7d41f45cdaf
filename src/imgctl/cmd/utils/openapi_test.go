package utils

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/require"
)

func TestGenerateOpenAPISpecs(t *testing.T) {
	specs, err := GenerateOpenAPISpecs(context.Background())
	require.NoError(t, err)

	doc, err := openapi3.NewLoader().LoadFromData([]byte(specs))
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	require.NotNil(t, doc.Paths.Value("/health").Get)

	images := doc.Paths.Value(PathPrefix)
	require.NotNil(t, images)
	require.NotNil(t, images.Post)
	require.NotNil(t, images.Post.Security)
	require.Len(t, *images.Post.Security, 2)

	item := doc.Paths.Value(PathPrefix + "/{imageId}")
	require.NotNil(t, item)
	require.NotNil(t, item.Get)
	require.NotNil(t, item.Head)
	require.NotNil(t, item.Delete)
	require.Nil(t, item.Get.Security)

	require.NotNil(t, doc.Tags.Get(Tag))
	require.Contains(t, doc.Components.SecuritySchemes, "bearerAuth")
	require.Contains(t, doc.Components.SecuritySchemes, "apiKeyAuth")
}
