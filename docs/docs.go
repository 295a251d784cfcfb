// Package docs registers the swagger spec served at /swagger. Regenerate with
// `go generate ./cmd/klotto` after changing handler annotations.
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
        "/healthz": {"get": {"tags": ["health"], "summary": "Health check", "responses": {"200": {"description": "OK"}}}},
        "/readyz": {"get": {"tags": ["health"], "summary": "Readiness check", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/api/draws": {
            "get": {
                "tags": ["draws"],
                "summary": "List stored draws, newest first",
                "parameters": [
                    {"type": "integer", "description": "page size (default 50, max 500)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "offset", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["draws"],
                "summary": "Add a draw manually",
                "consumes": ["application/json"],
                "parameters": [{"description": "draw", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/lotto.DrawInput"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/api/draws/{draw_no}": {
            "get": {
                "tags": ["draws"],
                "summary": "Get one draw",
                "parameters": [{"type": "integer", "description": "draw number", "name": "draw_no", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/stats/frequency": {"get": {"tags": ["stats"], "summary": "Hot and cold numbers with per-number counts", "responses": {"200": {"description": "OK"}}}},
        "/api/stats/ranges": {"get": {"tags": ["stats"], "summary": "Main-number distribution per range bucket", "responses": {"200": {"description": "OK"}}}},
        "/api/stats/pairs": {"get": {"tags": ["stats"], "summary": "Most frequent number pairs", "responses": {"200": {"description": "OK"}}}},
        "/api/stats/trend": {
            "get": {
                "tags": ["stats"],
                "summary": "Most recent draws",
                "parameters": [{"type": "integer", "description": "number of draws (default 10)", "name": "count", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/generate/smart": {
            "post": {
                "tags": ["generate"],
                "summary": "Generate one frequency-weighted set",
                "consumes": ["application/json"],
                "parameters": [{"description": "constraints", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/generator.Constraints"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/generate/balanced": {
            "post": {
                "tags": ["generate"],
                "summary": "Generate several sets across hot, cold and unbalanced presets",
                "consumes": ["application/json"],
                "parameters": [
                    {"type": "integer", "description": "number of sets (1..20)", "name": "count", "in": "query"},
                    {"description": "fixed and excluded numbers", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/generator.Constraints"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/analysis/check": {
            "post": {
                "tags": ["analysis"],
                "summary": "Score a set and compare it with a stored draw",
                "consumes": ["application/json"],
                "parameters": [{"description": "numbers and optional draw_no (latest when omitted)", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.checkRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/sync": {"post": {"tags": ["sync"], "summary": "Start a background draw sync", "description": "Cancels and waits for any running sync first.", "responses": {"202": {"description": "Accepted"}}}},
        "/api/sync/state": {"get": {"tags": ["sync"], "summary": "Last persisted sync state and the in-flight run", "responses": {"200": {"description": "OK"}}}},
        "/api/sync/estimate": {"get": {"tags": ["sync"], "summary": "Estimated current draw versus the stored watermark", "responses": {"200": {"description": "OK"}}}},
        "/api/sync/events": {"get": {"tags": ["sync"], "summary": "Stream sync events over a websocket", "responses": {"101": {"description": "Switching Protocols"}}}},
        "/api/history": {
            "get": {"tags": ["history"], "summary": "Generated sets, newest first", "parameters": [{"type": "integer", "description": "number of entries (default 50, max 500)", "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["history"], "summary": "Clear the generated-set history", "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}}
        },
        "/api/history/stats": {"get": {"tags": ["history"], "summary": "Per-number counts across generated sets", "responses": {"200": {"description": "OK"}}}},
        "/api/history/check": {"post": {"tags": ["history"], "summary": "Whether a combination was generated before", "parameters": [{"description": "numbers", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.numbersRequest"}}], "responses": {"200": {"description": "OK"}}}},
        "/api/favorites": {
            "get": {"tags": ["favorites"], "summary": "Saved favorite sets in insertion order", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["favorites"], "summary": "Save a favorite set", "parameters": [{"description": "numbers and memo", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.numbersRequest"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}
        },
        "/api/favorites/{index}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["favorites"], "summary": "Remove a favorite by position", "parameters": [{"type": "integer", "description": "zero-based position", "name": "index", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "definitions": {
        "handler.numbersRequest": {
            "type": "object",
            "properties": {
                "numbers": {"type": "array", "items": {"type": "integer"}},
                "memo": {"type": "string"}
            }
        },
        "lotto.DrawInput": {
            "type": "object",
            "properties": {
                "draw_no": {"type": "integer"},
                "date": {"type": "string"},
                "numbers": {"type": "array", "items": {"type": "integer"}},
                "bonus": {"type": "integer"},
                "prize_amount": {"type": "integer"},
                "winners_count": {"type": "integer"},
                "total_sales": {"type": "integer"}
            }
        },
        "generator.Constraints": {
            "type": "object",
            "properties": {
                "fixed_numbers": {"type": "array", "items": {"type": "integer"}},
                "excluded_numbers": {"type": "array", "items": {"type": "integer"}},
                "prefer_hot": {"type": "boolean"},
                "balance_mode": {"type": "boolean"}
            }
        },
        "handler.checkRequest": {
            "type": "object",
            "properties": {
                "numbers": {"type": "array", "items": {"type": "integer"}},
                "draw_no": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "klotto API",
	Description:      "Lotto 6/45 draw history, frequency statistics, weighted number generation and draw sync.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
