package utils

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/q-controller/imgctl/src/pkg/images"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

const (
	Tag        = "ImageService"
	PathPrefix = "/images"
)

//go:embed docs/openapi.yaml
var openAPISpecs string

// GenerateOpenAPISpecs merges the image store paths into the base document
// and validates the result before returning it as YAML.
func GenerateOpenAPISpecs(ctx context.Context) (string, error) {
	var spec map[string]interface{}
	if err := yaml.Unmarshal([]byte(openAPISpecs), &spec); err != nil {
		return "", fmt.Errorf("failed to parse OpenAPI spec: %w", err)
	}

	existingTags, _ := spec["tags"].([]interface{})
	found := lo.ContainsBy(existingTags, func(t interface{}) bool {
		tag, ok := t.(map[string]interface{})
		return ok && tag["name"] == Tag
	})
	if !found {
		spec["tags"] = append(existingTags, map[string]interface{}{"name": Tag})
	}

	var imagesSpec map[string]interface{}
	if err := yaml.Unmarshal([]byte(images.GetOpenAPISpec(PathPrefix, Tag)), &imagesSpec); err != nil {
		return "", fmt.Errorf("failed to parse images OpenAPI spec: %w", err)
	}

	paths, ok := spec["paths"].(map[string]interface{})
	if !ok {
		paths = map[string]interface{}{}
	}
	for k, v := range imagesSpec {
		paths[k] = v
	}
	spec["paths"] = paths

	bytes, bytesErr := yaml.Marshal(spec)
	if bytesErr != nil {
		return "", fmt.Errorf("failed to marshal OpenAPI spec: %w", bytesErr)
	}

	doc, loadErr := openapi3.NewLoader().LoadFromData(bytes)
	if loadErr != nil {
		return "", fmt.Errorf("failed to load OpenAPI spec: %w", loadErr)
	}
	if validateErr := doc.Validate(ctx); validateErr != nil {
		return "", fmt.Errorf("invalid OpenAPI spec: %w", validateErr)
	}

	return string(bytes), nil
}
