// Package docs holds the OpenAPI document served under /api/docs; keep it in step with the handler annotations
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "components": {
        "schemas": {
            "http.ImportRequest": {
                "type": "object",
                "required": ["conversations", "processNlu"],
                "properties": {
                    "conversations": {"type": "array", "items": {"type": "object"}},
                    "processNlu": {"type": "boolean"}
                }
            },
            "domain.MessageBody": {
                "type": "object",
                "properties": {"message": {"type": "string"}}
            },
            "domain.PartialBody": {
                "type": "object",
                "properties": {
                    "messageConversation": {"type": "string"},
                    "notValids": {"type": "array", "items": {"type": "object"}},
                    "messageParseData": {"type": "string"},
                    "invalidParseDatas": {"type": "array", "items": {"type": "array", "items": {"type": "object"}}}
                }
            },
            "domain.WatermarkBody": {
                "type": "object",
                "properties": {"timestamp": {"type": "integer", "example": 1700000000}}
            },
            "domain.WriteErrorBody": {
                "type": "object",
                "properties": {
                    "code": {"type": "integer"},
                    "message": {"type": "string"},
                    "field": {"type": "string"}
                }
            },
            "http.HealthResponse": {
                "type": "object",
                "properties": {
                    "ok": {"type": "boolean", "example": true},
                    "service": {"type": "string", "example": "trackerhub-api"},
                    "started": {"type": "string", "example": "2025-09-03T13:00:00Z"},
                    "now": {"type": "string", "example": "2025-09-03T13:05:00Z"}
                }
            },
            "http.ReadyCheck": {
                "type": "object",
                "properties": {
                    "name": {"type": "string", "example": "pg"},
                    "status": {"type": "string", "example": "ok"},
                    "error": {"type": "string"}
                }
            },
            "http.ReadyResponse": {
                "type": "object",
                "properties": {
                    "status": {"type": "string", "example": "ok"},
                    "checks": {"type": "array", "items": {"$ref": "#/components/schemas/http.ReadyCheck"}},
                    "now": {"type": "string", "example": "2025-09-03T13:05:00Z"}
                }
            },
            "http.ServiceResponse": {
                "type": "object",
                "properties": {
                    "name": {"type": "string", "example": "trackerhub-api"},
                    "started": {"type": "string", "example": "2025-09-03T13:00:00Z"},
                    "uptime": {"type": "integer", "example": 300}
                }
            },
            "version.BuildInfo": {
                "type": "object",
                "properties": {
                    "service": {"type": "string"},
                    "version": {"type": "string"},
                    "commit": {"type": "string"},
                    "date": {"type": "string"}
                }
            }
        }
    },
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "externalDocs": {"description": "", "url": ""},
    "paths": {
        "/conversations/environment/{env}": {
            "post": {
                "description": "Replaces conversations by _id and back-fills activity from user parses newer than the env watermark",
                "tags": ["Imports"],
                "summary": "Import conversations",
                "parameters": [
                    {"description": "Environment", "name": "env", "in": "path", "required": true, "schema": {"type": "string", "enum": ["production", "staging", "development"]}}
                ],
                "requestBody": {
                    "required": true,
                    "content": {"application/json": {"schema": {"$ref": "#/components/schemas/http.ImportRequest"}}}
                },
                "responses": {
                    "200": {"description": "all imported", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/domain.MessageBody"}}}},
                    "206": {"description": "some conversations or parses skipped", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/domain.PartialBody"}}}},
                    "400": {"description": "invalid request", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorMessage"}}}},
                    "500": {"description": "write failures", "content": {"application/json": {"schema": {"type": "array", "items": {"$ref": "#/components/schemas/domain.WriteErrorBody"}}}}}
                }
            }
        },
        "/conversations/environment/{env}/latest-imported-event": {
            "get": {
                "tags": ["Imports"],
                "description": "Seconds of the newest updatedAt among conversations of env, 0 when there are none",
                "summary": "Latest imported event",
                "parameters": [
                    {"description": "Environment", "name": "env", "in": "path", "required": true, "schema": {"type": "string", "enum": ["production", "staging", "development"]}}
                ],
                "responses": {
                    "200": {"description": "watermark", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/domain.WatermarkBody"}}}},
                    "400": {"description": "invalid environment", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorMessage"}}}}
                }
            }
        },
        "/projects/{projectId}/conversations/{senderId}/{eventCount}": {
            "get": {
                "description": "null when the conversation does not exist; eventCount keeps only the last events",
                "tags": ["Trackers"],
                "summary": "Get a tracker",
                "parameters": [
                    {"description": "Project", "name": "projectId", "in": "path", "required": true, "schema": {"type": "string"}},
                    {"description": "Conversation", "name": "senderId", "in": "path", "required": true, "schema": {"type": "string"}},
                    {"description": "Last events to return", "name": "eventCount", "in": "path", "required": true, "schema": {"type": "integer"}}
                ],
                "responses": {
                    "200": {"description": "tracker or null", "content": {"application/json": {"schema": {"type": "object"}}}},
                    "400": {"description": "tracker belongs to another project", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorMessage"}}}}
                }
            }
        },
        "/projects/{projectId}/conversations/{senderId}/insert": {
            "post": {
                "tags": ["Trackers"],
                "summary": "Insert a conversation",
                "parameters": [
                    {"description": "Project", "name": "projectId", "in": "path", "required": true, "schema": {"type": "string"}},
                    {"description": "Conversation", "name": "senderId", "in": "path", "required": true, "schema": {"type": "string"}}
                ],
                "requestBody": {"required": true, "content": {"application/json": {"schema": {"type": "object"}}}},
                "responses": {
                    "200": {"description": "inserted", "content": {"application/json": {"schema": {"type": "object"}}}},
                    "409": {"description": "conversation exists", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorEnvelope"}}}}
                }
            }
        },
        "/projects/{projectId}/conversations/{senderId}": {
            "post": {
                "description": "Pushes events and sets the other tracker members; inserts the conversation when it does not exist",
                "tags": ["Trackers"],
                "summary": "Append to a tracker",
                "parameters": [
                    {"description": "Project", "name": "projectId", "in": "path", "required": true, "schema": {"type": "string"}},
                    {"description": "Conversation", "name": "senderId", "in": "path", "required": true, "schema": {"type": "string"}}
                ],
                "requestBody": {"required": true, "content": {"application/json": {"schema": {"type": "object"}}}},
                "responses": {
                    "200": {"description": "appended", "content": {"application/json": {"schema": {"type": "object"}}}}
                }
            }
        },
        "/meta/health": {
            "get": {
                "tags": ["Meta"],
                "summary": "Health check",
                "responses": {"200": {"description": "alive", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/http.HealthResponse"}}}}}
            }
        },
        "/meta/ready": {
            "get": {
                "description": "skipped backends are not configured and do not degrade readiness",
                "tags": ["Meta"],
                "summary": "Readiness probe with dependency checks",
                "responses": {"200": {"description": "checks", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/http.ReadyResponse"}}}}}
            }
        },
        "/meta/version": {
            "get": {
                "tags": ["Meta"],
                "summary": "Build and version info",
                "responses": {"200": {"description": "build", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/version.BuildInfo"}}}}}
            }
        },
        "/meta/service": {
            "get": {
                "tags": ["Meta"],
                "summary": "Service info and uptime",
                "responses": {"200": {"description": "service", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/http.ServiceResponse"}}}}}
            }
        }
    },
    "openapi": "3.1.0"
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Title:            "trackerhub API",
	Description:      "Conversation import, activity back-fill and live tracker endpoints",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
