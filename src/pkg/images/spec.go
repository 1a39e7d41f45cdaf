package images

import (
	"fmt"
	"strings"
)

// openAPITemplate describes the REST surface the client consumes.
// %[1]s is the images root path, %[2]s the tag.
const openAPITemplate = `/health:
  get:
    tags:
      - %[2]s
    summary: Health check
    description: Reports service status. No credential is required.
    operationId: checkHealth
    responses:
      '200':
        description: Service status
        content:
          application/json:
            schema:
              type: object
              properties:
                status:
                  type: string
                service:
                  type: string
%[1]s:
  post:
    tags:
      - %[2]s
    summary: Upload image
    description: Stores the raw request body. The id is derived from the content.
    operationId: uploadImage
    security:
      - bearerAuth: []
      - apiKeyAuth: []
    requestBody:
      required: true
      content:
        application/octet-stream:
          schema:
            type: string
            format: binary
    responses:
      '200':
        description: Identical content was already stored
        content:
          application/json:
            schema:
              type: object
              properties:
                id:
                  type: string
                status:
                  type: string
              required:
                - id
      '201':
        description: Image stored
        content:
          application/json:
            schema:
              type: object
              properties:
                id:
                  type: string
                status:
                  type: string
                size:
                  type: integer
                  format: int64
              required:
                - id
      '400':
        description: Empty request body
      '401':
        description: Missing or invalid credential
%[1]s/{imageId}:
  parameters:
    - name: imageId
      in: path
      required: true
      description: Server-assigned image id
      schema:
        type: string
  get:
    tags:
      - %[2]s
    summary: Download image
    operationId: downloadImage
    responses:
      '200':
        description: Image content
        content:
          image/*:
            schema:
              type: string
              format: binary
          application/octet-stream:
            schema:
              type: string
              format: binary
      '404':
        description: Image not found
  head:
    tags:
      - %[2]s
    summary: Image metadata
    description: Same headers as the download, without the body.
    operationId: imageInfo
    responses:
      '200':
        description: Image exists
      '404':
        description: Image not found
  delete:
    tags:
      - %[2]s
    summary: Delete image
    operationId: deleteImage
    security:
      - bearerAuth: []
      - apiKeyAuth: []
    responses:
      '200':
        description: Image deleted
      '401':
        description: Missing or invalid credential
      '404':
        description: Image not found`

// GetOpenAPISpec returns the paths section for the image store rooted at
// rootPath, tagged with tag.
func GetOpenAPISpec(rootPath, tag string) string {
	if rootPath == "" || tag == "" {
		return ""
	}

	// Ensure rootPath doesn't have trailing slash
	rootPath = strings.TrimSuffix(rootPath, "/")

	return fmt.Sprintf(openAPITemplate, rootPath, tag)
}
