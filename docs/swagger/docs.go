// Package swagger registers the OpenAPI document served at /swagger.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/modules": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns every exposed module keyed by slug, with current options and settings annotated with dependency status and visibility",
                "produces": ["application/json"],
                "tags": ["Modules"],
                "summary": "List modules",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/modules.ListResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/modules.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/modules.ErrorResponse"}}
                }
            }
        },
        "/api/v1/modules/{slug}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns one module with current options and annotated settings",
                "produces": ["application/json"],
                "tags": ["Modules"],
                "summary": "Get module",
                "parameters": [
                    {"type": "string", "description": "Module slug", "name": "slug", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/modules.ModuleResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/modules.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/modules.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Sets the enabled flag of a module. Every other option is kept.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Modules"],
                "summary": "Toggle module",
                "parameters": [
                    {"type": "string", "description": "Module slug", "name": "slug", "in": "path", "required": true},
                    {"description": "Enabled flag", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/modules.ToggleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/modules.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/modules.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/modules.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/modules.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/modules.ErrorResponse"}}
                }
            }
        },
        "/api/v1/modules/{slug}/settings": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Sanitizes the submitted settings against the module schema and merges them into the stored options. Invalid values are dropped and reported. The enabled flag cannot be changed here.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Modules"],
                "summary": "Update module settings",
                "parameters": [
                    {"type": "string", "description": "Module slug", "name": "slug", "in": "path", "required": true},
                    {"description": "Raw settings", "name": "settings", "in": "body", "required": true, "schema": {"type": "object", "additionalProperties": true}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/modules.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/modules.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/modules.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/modules.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/modules.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Returns OK if the service is running",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness check",
                "responses": {"200": {"description": "status: ok", "schema": {"$ref": "#/definitions/http.HealthResponse"}}}
            }
        },
        "/health/ready": {
            "get": {
                "description": "Checks that the option store answers",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "status: ok", "schema": {"$ref": "#/definitions/http.HealthResponse"}},
                    "503": {"description": "status: unhealthy", "schema": {"$ref": "#/definitions/http.HealthResponse"}}
                }
            }
        },
        "/version": {
            "get": {
                "description": "Returns the version information of the service",
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Get service version",
                "responses": {"200": {"description": "Version information", "schema": {"$ref": "#/definitions/http.VersionResponse"}}}
            }
        }
    },
    "definitions": {
        "http.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "error": {"type": "string"}
            }
        },
        "http.VersionResponse": {
            "type": "object",
            "properties": {
                "service": {"type": "string", "example": "modhost"},
                "version": {"type": "string", "example": "1.0.0"}
            }
        },
        "modules.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "module_not_found"},
                "message": {"type": "string", "example": "Module not found."}
            }
        },
        "modules.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/modules.ErrorDetail"},
                "success": {"type": "boolean", "example": false}
            }
        },
        "modules.ListResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "object", "additionalProperties": {"$ref": "#/definitions/app.ModuleSummary"}},
                "success": {"type": "boolean", "example": true}
            }
        },
        "modules.ModuleResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/app.ModuleSummary"},
                "success": {"type": "boolean", "example": true}
            }
        },
        "modules.ToggleRequest": {
            "type": "object",
            "properties": {
                "enabled": {"type": "boolean", "example": true}
            }
        },
        "modules.MessageResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/modules.UpdateDetail"},
                "message": {"type": "string", "example": "Settings saved."},
                "success": {"type": "boolean", "example": true}
            }
        },
        "modules.UpdateDetail": {
            "type": "object",
            "properties": {
                "changed": {"type": "array", "items": {"type": "string"}},
                "dropped": {"type": "array", "items": {"$ref": "#/definitions/schema.Drop"}}
            }
        },
        "schema.Drop": {
            "type": "object",
            "properties": {
                "field": {"type": "string", "example": "unknown_field"},
                "reason": {"type": "string", "example": "unknown_field"}
            }
        },
        "app.ModuleSummary": {
            "type": "object",
            "properties": {
                "slug": {"type": "string", "example": "localfonts"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "author": {"type": "string"},
                "version": {"type": "string"},
                "enabled": {"type": "boolean"},
                "state": {"type": "string", "example": "active"},
                "options": {"type": "object", "additionalProperties": true},
                "admin_settings": {"type": "object", "additionalProperties": true}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Admin token or session token (format: Bearer {token})",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "modhost API",
	Description:      "Module configuration and dependency resolution engine.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
