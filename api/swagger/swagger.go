package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TITANS Portal API",
        "description": "Club management portal with term rollover and archive restore",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Members", "description": "Committee roster and draft editor"},
        {"name": "Notices", "description": "Official notice board"},
        {"name": "Events", "description": "Club calendar"},
        {"name": "Tasks", "description": "Kanban board"},
        {"name": "Queries", "description": "Leadership inbox"},
        {"name": "Activity", "description": "Audit trail feed"},
        {"name": "Archives", "description": "Archived terms, view binding and restore"},
        {"name": "Rollover", "description": "Term rollover state machine"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate a member",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current member identity",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/members": {
            "get": {
                "tags": ["Members"],
                "summary": "List the roster of the viewed term",
                "parameters": [
                    {"name": "X-Session-ID", "in": "header", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Members"],
                "summary": "Add a roster member",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Email already on the roster"}
                }
            }
        },
        "/members/{email}": {
            "get": {"tags": ["Members"], "summary": "Get one member", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Members"], "summary": "Update a roster member", "responses": {"200": {"description": "OK"}}},
            "delete": {
                "tags": ["Members"],
                "summary": "Remove a roster member",
                "responses": {
                    "204": {"description": "Removed"},
                    "409": {"description": "The President cannot be removed"}
                }
            }
        },
        "/members/draft": {
            "post": {"tags": ["Members"], "summary": "Open a staged roster editing session", "responses": {"200": {"description": "OK"}}},
            "get": {"tags": ["Members"], "summary": "Read the staged roster", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Members"], "summary": "Abandon the staged session", "responses": {"204": {"description": "Discarded"}}}
        },
        "/members/draft/undo": {
            "post": {"tags": ["Members"], "summary": "Undo the latest staged edit", "responses": {"200": {"description": "OK"}}}
        },
        "/members/draft/redo": {
            "post": {"tags": ["Members"], "summary": "Redo the latest undone edit", "responses": {"200": {"description": "OK"}}}
        },
        "/members/draft/commit": {
            "post": {"tags": ["Members"], "summary": "Commit the staged roster", "responses": {"204": {"description": "Committed"}}}
        },
        "/members/export": {
            "get": {
                "tags": ["Members"],
                "summary": "Download the roster of the viewed term",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/notices": {
            "get": {"tags": ["Notices"], "summary": "List notices of the viewed term", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Notices"], "summary": "Post a notice", "responses": {"201": {"description": "Created"}}}
        },
        "/notices/{id}": {
            "delete": {"tags": ["Notices"], "summary": "Remove a notice", "responses": {"204": {"description": "Removed"}}}
        },
        "/events": {
            "get": {"tags": ["Events"], "summary": "List calendar events of the viewed term", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Events"], "summary": "Schedule an event", "responses": {"201": {"description": "Created"}}}
        },
        "/events/{id}": {
            "get": {"tags": ["Events"], "summary": "Get one event", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Events"], "summary": "Update an event", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Events"], "summary": "Remove an event", "responses": {"204": {"description": "Removed"}}}
        },
        "/tasks": {
            "get": {
                "tags": ["Tasks"],
                "summary": "List board tasks of the viewed term",
                "parameters": [
                    {"name": "eventId", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {"tags": ["Tasks"], "summary": "Add a board task", "responses": {"201": {"description": "Created"}}}
        },
        "/tasks/{id}/status": {
            "put": {"tags": ["Tasks"], "summary": "Drag a task to another column", "responses": {"200": {"description": "OK"}}}
        },
        "/tasks/{id}/updates": {
            "post": {"tags": ["Tasks"], "summary": "Append a progress note", "responses": {"200": {"description": "OK"}}}
        },
        "/tasks/{id}": {
            "delete": {"tags": ["Tasks"], "summary": "Remove a task", "responses": {"204": {"description": "Removed"}}}
        },
        "/queries": {
            "get": {"tags": ["Queries"], "summary": "List inbox queries of the viewed term", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Queries"], "summary": "File a query", "responses": {"201": {"description": "Created"}}}
        },
        "/queries/{id}/answer": {
            "put": {"tags": ["Queries"], "summary": "Resolve a query", "responses": {"200": {"description": "OK"}}}
        },
        "/queries/{id}": {
            "delete": {"tags": ["Queries"], "summary": "Remove a query", "responses": {"204": {"description": "Removed"}}}
        },
        "/activity": {
            "get": {
                "tags": ["Activity"],
                "summary": "List recent activity of the viewed term",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/archives": {
            "get": {"tags": ["Archives"], "summary": "List archived terms", "responses": {"200": {"description": "OK"}}}
        },
        "/archives/{termId}": {
            "get": {
                "tags": ["Archives"],
                "summary": "Fetch one archived term summary",
                "parameters": [
                    {"name": "termId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "No such archive"}
                }
            }
        },
        "/archives/export": {
            "get": {
                "tags": ["Archives"],
                "summary": "Download the archive listing",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/archives/view": {
            "post": {
                "tags": ["Archives"],
                "summary": "Bind this session to an archived term",
                "parameters": [
                    {"name": "X-Session-ID", "in": "header", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Bound"},
                    "404": {"description": "No such archive"}
                }
            },
            "get": {"tags": ["Archives"], "summary": "Report which term this session is viewing", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Archives"], "summary": "Return this session to the active term", "responses": {"204": {"description": "Cleared"}}}
        },
        "/archives/restore": {
            "post": {
                "tags": ["Archives"],
                "summary": "Permanently restore an archived term",
                "responses": {
                    "202": {"description": "Accepted"},
                    "409": {"description": "A restore is already running"}
                }
            }
        },
        "/archives/restore/status": {
            "get": {"tags": ["Archives"], "summary": "Poll the permanent restore workflow", "responses": {"200": {"description": "OK"}}}
        },
        "/rollover/begin": {
            "post": {"tags": ["Rollover"], "summary": "Open the rollover confirmation step", "responses": {"200": {"description": "OK"}, "409": {"description": "Wrong phase"}}}
        },
        "/rollover/confirm": {
            "post": {"tags": ["Rollover"], "summary": "Acknowledge the destructive-consequences warning", "responses": {"200": {"description": "OK"}}}
        },
        "/rollover/cancel": {
            "post": {"tags": ["Rollover"], "summary": "Abandon the rollover before execution", "responses": {"200": {"description": "OK"}}}
        },
        "/rollover/submit": {
            "post": {
                "tags": ["Rollover"],
                "summary": "Submit incoming admin credentials and execute",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdminCredentials"}}
                ],
                "responses": {"202": {"description": "Accepted"}}
            }
        },
        "/rollover/status": {
            "get": {"tags": ["Rollover"], "summary": "Poll the rollover workflow", "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "AdminCredentials": {
            "type": "object",
            "required": ["name", "email", "password"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
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
