package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Substitution API",
        "description": "Plans substitute teachers for absent staff against the weekly timetable.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Timetable", "description": "Read-only timetable views with substitutes overlaid"},
        {"name": "Substitutions", "description": "Per-day substitution plans"},
        {"name": "Availability", "description": "Free teacher finder"},
        {"name": "Dashboard", "description": "Today at a glance"}
    ],
    "paths": {
        "/timetable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Days, periods, classes and teachers of the loaded timetable",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/days/{day}": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Day grid with substitutes overlaid",
                "parameters": [
                    {"name": "day", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown day", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/classes/{class}": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Week of one class with substitutes overlaid",
                "parameters": [
                    {"name": "class", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown class", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/teachers/{teacher}": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Week of one teacher with substitution duties",
                "parameters": [
                    {"name": "teacher", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown teacher", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/substitutions/{day}": {
            "get": {
                "tags": ["Substitutions"],
                "summary": "Current substitution plan of a day",
                "parameters": [
                    {"name": "day", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown day", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Substitutions"],
                "summary": "Clear the substitution plan of a day, keeping its absentees",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "day", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/substitutions/{day}/generate": {
            "post": {
                "tags": ["Substitutions"],
                "summary": "Generate the substitution plan of a day",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "day", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GeneratePlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "No absent teachers", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Missing token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Role not allowed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/substitutions/{day}/export": {
            "get": {
                "tags": ["Substitutions"],
                "summary": "Download the substitution plan of a day",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "day", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/availability/free": {
            "get": {
                "tags": ["Availability"],
                "summary": "Teachers free to cover a period, least loaded first",
                "parameters": [
                    {"name": "day", "in": "query", "required": true, "type": "string"},
                    {"name": "period", "in": "query", "required": true, "type": "integer", "minimum": 1},
                    {"name": "absent", "in": "query", "type": "string", "description": "Comma separated"},
                    {"name": "withPlan", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid period", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Today's load, substitutions and who is free right now",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GeneratePlanRequest": {
            "type": "object",
            "required": ["absentTeachers"],
            "properties": {
                "absentTeachers": {"type": "array", "minItems": 1, "items": {"type": "string"}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
