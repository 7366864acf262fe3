// Package docs registers the service's OpenAPI document with swag so the
// Swagger UI can serve it.
//
//	@title			Project API
//	@version		1.0
//	@description	Project description API
//	@license.name	No license
//	@externalDocs.description	Project Documentation
package docs

import (
	"strings"

	"github.com/swaggo/swag"
)

// InstanceName is the swag registry key of the document.
const InstanceName = "swagger"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "No license"
        },
        "version": "{{.Version}}"
    },
    "externalDocs": {
        "description": "Project Documentation"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Service health",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/api.healthResponse"}
                    }
                }
            }
        },
        "/api/info": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Application name, active profiles and config server status",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/api.infoResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "api.healthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "api.infoResponse": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "profiles": {"type": "array", "items": {"type": "string"}},
                "configServerStatus": {"type": "string"},
                "apiDocs": {"type": "boolean"},
                "timestamp": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds the document metadata rendered into docTemplate.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Project API",
	Description:      "Project description API",
	InfoInstanceName: InstanceName,
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Configure sets the base path and scheme the documented routes are served
// under. It must be called before the document is served.
func Configure(basePath string, tls bool) {
	// Documented paths already start with a slash.
	if basePath != "/" {
		basePath = strings.TrimSuffix(basePath, "/")
	}
	SwaggerInfo.BasePath = basePath
	if tls {
		SwaggerInfo.Schemes = []string{"https"}
	} else {
		SwaggerInfo.Schemes = []string{"http"}
	}
}

// Available reports whether the document is registered and renders.
func Available() bool {
	_, err := swag.ReadDoc(InstanceName)
	return err == nil
}
