// Package docs holds the Swagger document served at /swagger/*any. It is
// kept in the layout swag emits and mirrors the handler annotations;
// `swag init -g cmd/server/main.go -o docs` regenerates it.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness",
                "operationId": "health",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}}}
            }
        },
        "/api/scripts/generate": {
            "post": {
                "tags": ["Scripts"],
                "summary": "Generate a script",
                "operationId": "generateScript",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "User ID (demo header)", "name": "X-User-ID", "in": "header"},
                    {"type": "string", "description": "Idempotency key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Generation request", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.GenerateScriptRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Script"}},
                    "400": {"description": "Malformed JSON", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "422": {"description": "Validation error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "429": {"description": "Quota exceeded", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/scripts": {
            "get": {
                "tags": ["Scripts"],
                "summary": "List the caller's scripts (paginated)",
                "operationId": "listScripts",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "User ID (demo header)", "name": "X-User-ID", "in": "header"},
                    {"type": "integer", "default": 1, "minimum": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "minimum": 1, "maximum": 100, "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListScriptsResponse"}},
                    "304": {"description": "Not Modified"}
                }
            }
        },
        "/api/scripts/search": {
            "get": {
                "tags": ["Scripts"],
                "summary": "Search scripts",
                "operationId": "searchScripts",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "q", "in": "query", "required": true},
                    {"type": "integer", "default": 5, "minimum": 1, "maximum": 20, "name": "k", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SearchScriptsResponse"}},
                    "422": {"description": "Missing query", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/scripts/{id}": {
            "get": {
                "tags": ["Scripts"],
                "summary": "Get a script",
                "operationId": "getScript",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Script"}},
                    "404": {"description": "Script not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/videos/create": {
            "post": {
                "tags": ["Videos"],
                "summary": "Create a video from a script",
                "operationId": "createVideo",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "X-User-ID", "in": "header"},
                    {"type": "string", "name": "Idempotency-Key", "in": "header"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateVideoRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Video"}},
                    "404": {"description": "Script not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "429": {"description": "Quota exceeded", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/videos": {
            "get": {
                "tags": ["Videos"],
                "summary": "List the caller's recent videos",
                "operationId": "listVideos",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "default": 10, "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListVideosResponse"}}}
            }
        },
        "/api/videos/{id}": {
            "get": {
                "tags": ["Videos"],
                "summary": "Get a video",
                "operationId": "getVideo",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Video"}},
                    "404": {"description": "Video not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/analytics/dashboard": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Service dashboard",
                "operationId": "analyticsDashboard",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DashboardResponse"}}}
            }
        },
        "/api/analytics/top-users": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Most active users",
                "operationId": "topUsers",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "default": 10, "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.TopUsersResponse"}}}
            }
        },
        "/api/analytics/users/{id}": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Per-user dashboard and usage report",
                "operationId": "userAnalytics",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "default": 30, "name": "days", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.UserAnalyticsResponse"}}}
            }
        },
        "/api/users": {
            "post": {
                "tags": ["Users"],
                "summary": "Register a user",
                "operationId": "registerUser",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.RegisterUserRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/services.Profile"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "422": {"description": "Validation error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/users/register": {
            "post": {
                "tags": ["Users"],
                "summary": "Register a user",
                "operationId": "registerUserAlias",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.RegisterUserRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/services.Profile"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "422": {"description": "Validation error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get a user profile",
                "operationId": "getUser",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.Profile"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/users/{id}/stats": {
            "get": {
                "tags": ["Users"],
                "summary": "Usage against plan limits",
                "operationId": "getUserStats",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.UserStats"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/users/{id}/plan": {
            "put": {
                "tags": ["Users"],
                "summary": "Change a user's plan",
                "operationId": "changePlan",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ChangePlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.PlanChange"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "422": {"description": "Unknown plan", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/costs": {
            "get": {
                "tags": ["Costs"],
                "summary": "Cost report of the caller",
                "operationId": "costAnalysis",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/services.CostAnalysis"}}}
            }
        },
        "/api/costs/estimate": {
            "get": {
                "tags": ["Costs"],
                "summary": "Price work before doing it",
                "operationId": "estimateCost",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "text", "in": "query"},
                    {"type": "integer", "name": "seconds", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.CostEstimate"}},
                    "422": {"description": "Neither text nor seconds", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/costs/optimize": {
            "post": {
                "tags": ["Costs"],
                "summary": "Plan cost savings for the caller",
                "operationId": "optimizeCosts",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "body", "in": "body", "schema": {"$ref": "#/definitions/handlers.OptimizeRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/services.OptimizationResult"}}}
            }
        }
    },
    "definitions": {
        "handlers.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "healthy"},
                "timestamp": {"type": "string"},
                "service": {"type": "string", "example": "ai-content-studio"},
                "version": {"type": "string", "example": "2.0.0"},
                "uptime": {"type": "string", "example": "2h3m4s"},
                "environment": {"type": "string", "example": "production"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "code": {"type": "string", "example": "not_found"},
                "detail": {"type": "string", "example": "Script not found"},
                "field": {"type": "string", "example": "topic"}
            }
        },
        "handlers.GenerateScriptRequest": {
            "type": "object",
            "properties": {
                "topic": {"type": "string", "example": "Remote work productivity"},
                "duration": {"type": "integer", "example": 60},
                "style": {"type": "string", "example": "casual"}
            }
        },
        "handlers.CreateVideoRequest": {
            "type": "object",
            "properties": {
                "script_id": {"type": "string"},
                "style": {"type": "string"},
                "voice": {"type": "string"}
            }
        },
        "handlers.RegisterUserRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "plan": {"type": "string", "example": "pro"}
            }
        },
        "handlers.ChangePlanRequest": {
            "type": "object",
            "required": ["plan"],
            "properties": {"plan": {"type": "string", "example": "enterprise"}}
        },
        "handlers.OptimizeRequest": {
            "type": "object",
            "properties": {"target_savings": {"type": "number", "example": 30}}
        },
        "handlers.Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "has_next": {"type": "boolean"}
            }
        },
        "handlers.ListScriptsResponse": {
            "type": "object",
            "properties": {
                "scripts": {"type": "array", "items": {"$ref": "#/definitions/domain.Script"}},
                "pagination": {"$ref": "#/definitions/handlers.Pagination"}
            }
        },
        "handlers.SearchScriptsResponse": {
            "type": "object",
            "properties": {
                "query": {"type": "string"},
                "results": {"type": "array", "items": {"type": "object"}}
            }
        },
        "handlers.ListVideosResponse": {
            "type": "object",
            "properties": {"videos": {"type": "array", "items": {"$ref": "#/definitions/domain.Video"}}}
        },
        "handlers.DashboardResponse": {"type": "object"},
        "handlers.TopUsersResponse": {"type": "object"},
        "handlers.UserAnalyticsResponse": {"type": "object"},
        "domain.Script": {"type": "object"},
        "domain.Video": {"type": "object"},
        "services.Profile": {"type": "object"},
        "services.UserStats": {"type": "object"},
        "services.PlanChange": {"type": "object"},
        "services.CostAnalysis": {"type": "object"},
        "services.CostEstimate": {"type": "object"},
        "services.OptimizationResult": {"type": "object"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "2.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "AI Content Studio API",
	Description:      "Script generation, video creation, analytics, users and cost tracking.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
