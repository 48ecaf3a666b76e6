// Package docs holds the swagger spec served at /swagger/.
// Regenerate with: swag init -g cmd/server/main.go
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
        "/problems": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Problems"],
                "summary": "Create a problem",
                "parameters": [
                    {"description": "Problem to create", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.CreateProblemRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.ProblemResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/problems/{problemID}/status": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "description": "Status edits made while a session is open show up in that session's summary.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Problems"],
                "summary": "Update a problem's status",
                "parameters": [
                    {"type": "string", "description": "Problem ID", "name": "problemID", "in": "path", "required": true},
                    {"description": "New status", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.UpdateProblemStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ProblemResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/problem-sets": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "A manual set lists its problems; a smart set selects them with a filter at every session start.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Problem sets"],
                "summary": "Create a problem set",
                "parameters": [
                    {"description": "Problem set to create", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.CreateProblemSetRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.ProblemSetResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/problem-sets/{setID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Problem sets"],
                "summary": "Get a problem set",
                "parameters": [
                    {"type": "string", "description": "Problem set ID", "name": "setID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ProblemSetResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/problem-sets/{setID}/sessions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Resumes the caller's active session on the set, or composes a new one from the set's problems.",
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Start or resume a review session",
                "parameters": [
                    {"type": "string", "description": "Problem set ID", "name": "setID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "resumed session", "schema": {"$ref": "#/definitions/api.StartSessionResponse"}},
                    "201": {"description": "new session", "schema": {"$ref": "#/definitions/api.StartSessionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "422": {"description": "no problems match", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/sessions/{sessionID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Get a review session",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.GetSessionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Soft-deletes the session without computing a summary.",
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Delete a review session",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.DeleteSessionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/sessions/{sessionID}/progress": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "wasSkipped=true records a skip; wasSkipped=false with wasCorrect records an answer; anything else only saves position and time.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Record session progress",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionID", "in": "path", "required": true},
                    {"description": "Progress report", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.RecordProgressRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.SessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/sessions/{sessionID}/complete": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Closes the session. The outcome is completed_with_degraded_summary when the summary could only be partially computed.",
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Complete a review session",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.CompleteSessionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "api.CreateProblemRequest": {
            "type": "object",
            "properties": {
                "subject_id": {"type": "string", "example": "algebra"},
                "title": {"type": "string", "example": "Solve x^2 - 5x + 6 = 0"},
                "problem_type": {"type": "string", "example": "short"},
                "status": {"type": "string", "example": "wrong"},
                "tag_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "api.UpdateProblemStatusRequest": {
            "type": "object",
            "properties": {"status": {"type": "string", "example": "mastered"}}
        },
        "api.ProblemResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "subject_id": {"type": "string"},
                "title": {"type": "string"},
                "problem_type": {"type": "string"},
                "status": {"type": "string"},
                "tag_ids": {"type": "array", "items": {"type": "string"}},
                "last_reviewed_at": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "filter.Config": {
            "type": "object",
            "properties": {
                "tag_ids": {"type": "array", "items": {"type": "string"}},
                "statuses": {"type": "array", "items": {"type": "string"}},
                "problem_types": {"type": "array", "items": {"type": "string"}},
                "days_since_review": {"type": "integer"},
                "include_never_reviewed": {"type": "boolean"}
            }
        },
        "reviewsession.SessionConfig": {
            "type": "object",
            "properties": {
                "randomize": {"type": "boolean"},
                "session_size": {"type": "integer"},
                "auto_advance": {"type": "boolean"}
            }
        },
        "api.CreateProblemSetRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "Quadratics, week 3"},
                "subject_id": {"type": "string", "example": "algebra"},
                "kind": {"type": "string", "example": "manual"},
                "problem_ids": {"type": "array", "items": {"type": "string"}},
                "filter": {"$ref": "#/definitions/filter.Config"},
                "session_config": {"$ref": "#/definitions/reviewsession.SessionConfig"},
                "sharing": {"type": "string", "example": "private"},
                "shared_with": {"type": "array", "items": {"type": "string"}}
            }
        },
        "api.ProblemSetResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "owner_id": {"type": "string"},
                "name": {"type": "string"},
                "subject_id": {"type": "string"},
                "kind": {"type": "string"},
                "problem_ids": {"type": "array", "items": {"type": "string"}},
                "filter": {"$ref": "#/definitions/filter.Config"},
                "session_config": {"$ref": "#/definitions/reviewsession.SessionConfig"},
                "sharing": {"type": "string"},
                "shared_with": {"type": "array", "items": {"type": "string"}},
                "is_owner": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "api.SessionResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "problem_set_id": {"type": "string"},
                "problem_ids": {"type": "array", "items": {"type": "string"}},
                "current_index": {"type": "integer"},
                "current_problem_id": {"type": "string"},
                "is_at_leading_edge": {"type": "boolean"},
                "completed_problem_ids": {"type": "array", "items": {"type": "string"}},
                "skipped_problem_ids": {"type": "array", "items": {"type": "string"}},
                "initial_statuses": {"type": "object", "additionalProperties": {"type": "string"}},
                "elapsed_ms": {"type": "integer"},
                "is_read_only": {"type": "boolean"},
                "is_active": {"type": "boolean"},
                "session_config": {"$ref": "#/definitions/reviewsession.SessionConfig"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "completed_at": {"type": "string"}
            }
        },
        "api.StartSessionResponse": {
            "type": "object",
            "properties": {
                "session": {"$ref": "#/definitions/api.SessionResponse"},
                "isNew": {"type": "boolean"},
                "firstProblemId": {"type": "string"}
            }
        },
        "api.ResultResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "problem_id": {"type": "string"},
                "was_correct": {"type": "boolean"},
                "was_skipped": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "api.GetSessionResponse": {
            "type": "object",
            "properties": {
                "session": {"$ref": "#/definitions/api.SessionResponse"},
                "problems": {"type": "array", "items": {"$ref": "#/definitions/api.ProblemResponse"}},
                "results": {"type": "array", "items": {"$ref": "#/definitions/api.ResultResponse"}}
            }
        },
        "api.RecordProgressRequest": {
            "type": "object",
            "properties": {
                "problemId": {"type": "string"},
                "wasSkipped": {"type": "boolean"},
                "wasCorrect": {"type": "boolean"},
                "currentIndex": {"type": "integer"},
                "elapsedMs": {"type": "integer"}
            }
        },
        "reviewsession.StatusChange": {
            "type": "object",
            "properties": {
                "problem_id": {"type": "string"},
                "from": {"type": "string"},
                "to": {"type": "string"}
            }
        },
        "reviewsession.Summary": {
            "type": "object",
            "properties": {
                "total_problems": {"type": "integer"},
                "answered_count": {"type": "integer"},
                "correct_count": {"type": "integer"},
                "incorrect_count": {"type": "integer"},
                "skipped_count": {"type": "integer"},
                "accuracy": {"type": "integer"},
                "elapsed_ms": {"type": "integer"},
                "status_changes": {"type": "array", "items": {"$ref": "#/definitions/reviewsession.StatusChange"}},
                "newly_mastered": {"type": "integer"},
                "improved": {"type": "integer"},
                "regressed": {"type": "integer"}
            }
        },
        "api.CompleteSessionResponse": {
            "type": "object",
            "properties": {
                "session": {"$ref": "#/definitions/api.SessionResponse"},
                "summary": {"$ref": "#/definitions/reviewsession.Summary"},
                "outcome": {"type": "string", "example": "completed"}
            }
        },
        "api.DeleteSessionResponse": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "is_active": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Wrongbook API",
	Description:      "Wrong-question notebook: collect the problems you got wrong and review them in resumable sessions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
