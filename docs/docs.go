package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "N-TASK Core API Documentation",
        "title": "N-TASK Core API",
        "version": "1.0"
    },
    "host": "localhost:8080",
    "basePath": "/api/v1",
    "schemes": ["http"],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check",
                "description": "Check if server is running",
                "responses": {
                    "200": {
                        "description": "Server is healthy"
                    }
                }
            }
        },
        "/api/v1/boards": {
            "get": {
                "tags": ["Boards"],
                "summary": "List Boards",
                "description": "List all boards and the active selection",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "Boards with the active board id"
                    }
                }
            },
            "post": {
                "tags": ["Boards"],
                "summary": "Create Board",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "board",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "name": {
                                    "type": "string",
                                    "example": "Scrum Board"
                                },
                                "description": {
                                    "type": "string"
                                }
                            }
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Board created"
                    },
                    "400": {
                        "description": "Validation failed"
                    }
                }
            }
        },
        "/api/v1/boards/{id}/graph": {
            "get": {
                "tags": ["Boards"],
                "summary": "Render Board Graph",
                "description": "Nodes with hierarchy levels and positions, edges, and highlight/dim flags for the optional selected task",
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true
                    },
                    {
                        "in": "query",
                        "name": "selected",
                        "type": "string",
                        "description": "Task id driving first-degree highlighting"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Rendered graph"
                    },
                    "404": {
                        "description": "Board not found"
                    }
                }
            }
        },
        "/api/v1/tasks": {
            "post": {
                "tags": ["Tasks"],
                "summary": "Create Task",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "task",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "board_id": {
                                    "type": "string",
                                    "example": "board-scrum"
                                },
                                "title": {
                                    "type": "string",
                                    "example": "Implement login flow"
                                },
                                "description": {
                                    "type": "string"
                                },
                                "assignee": {
                                    "type": "string"
                                },
                                "parent_task_id": {
                                    "type": "string"
                                },
                                "relation_type": {
                                    "type": "string",
                                    "enum": ["SUBTASK", "RELATED", "CROSS_DEPT", "CROSS_BOARD"]
                                }
                            }
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Task created"
                    },
                    "400": {
                        "description": "Validation failed"
                    },
                    "404": {
                        "description": "Board or parent task not found"
                    }
                }
            }
        },
        "/api/v1/tasks/{id}/status": {
            "put": {
                "tags": ["Tasks"],
                "summary": "Change Task Status",
                "description": "Any transition is legal; DONE triggers completion notifications and the webhook",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true
                    },
                    {
                        "in": "body",
                        "name": "status",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "status": {
                                    "type": "string",
                                    "enum": ["TODO", "IN_PROGRESS", "DONE"]
                                },
                                "actor": {
                                    "type": "string"
                                }
                            }
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Task updated"
                    },
                    "400": {
                        "description": "Invalid status"
                    },
                    "404": {
                        "description": "Task not found"
                    }
                }
            }
        },
        "/api/v1/documents/request": {
            "post": {
                "tags": ["Documents"],
                "summary": "Submit Document Request",
                "description": "Searches for matching documents; zero matches notifies the requester without creating a request",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "requester_email": {
                                    "type": "string",
                                    "example": "alice@example.com"
                                },
                                "approver_email": {
                                    "type": "string",
                                    "example": "bob@example.com"
                                },
                                "keyword": {
                                    "type": "string",
                                    "example": "quarterly report"
                                },
                                "requester_department": {
                                    "type": "string"
                                },
                                "urgency": {
                                    "type": "string",
                                    "enum": ["low", "normal", "high"]
                                }
                            }
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Request created and routed for approval, or no matches and the requester notified"
                    },
                    "400": {
                        "description": "Validation failed"
                    }
                }
            }
        },
        "/api/v1/documents/approve": {
            "get": {
                "tags": ["Documents"],
                "summary": "Resolve Approval Link",
                "description": "Validates the request is still pending and redirects to the decision form",
                "parameters": [
                    {
                        "in": "query",
                        "name": "request_id",
                        "type": "string",
                        "required": true
                    },
                    {
                        "in": "query",
                        "name": "action",
                        "type": "string",
                        "enum": ["approve", "reject"],
                        "required": true
                    }
                ],
                "responses": {
                    "302": {
                        "description": "Redirect to decision form"
                    },
                    "400": {
                        "description": "Invalid action or request already processed"
                    },
                    "404": {
                        "description": "Request not found"
                    }
                }
            },
            "post": {
                "tags": ["Documents"],
                "summary": "Decide Document Request",
                "description": "Approve (document_id and sharing_link required) or reject (reason optional) a pending request",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "decision",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "request_id": {
                                    "type": "string"
                                },
                                "action": {
                                    "type": "string",
                                    "enum": ["approve", "reject"]
                                },
                                "document_id": {
                                    "type": "string"
                                },
                                "sharing_link": {
                                    "type": "string"
                                },
                                "reason": {
                                    "type": "string"
                                }
                            }
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Request transitioned"
                    },
                    "400": {
                        "description": "Invalid action, missing fields or already processed"
                    },
                    "404": {
                        "description": "Request not found"
                    }
                }
            }
        },
        "/api/v1/documents/index": {
            "post": {
                "tags": ["Documents"],
                "summary": "Index Document",
                "description": "Parse an uploaded file through the external parser and store it for search",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "formData",
                        "name": "file",
                        "type": "file",
                        "required": true
                    },
                    {
                        "in": "formData",
                        "name": "fileName",
                        "type": "string",
                        "description": "Defaults to the uploaded file's name"
                    },
                    {
                        "in": "formData",
                        "name": "filePath",
                        "type": "string",
                        "required": true
                    },
                    {
                        "in": "formData",
                        "name": "accessLevel",
                        "type": "string",
                        "enum": ["public", "department", "restricted"]
                    },
                    {
                        "in": "formData",
                        "name": "allowedDepartments",
                        "type": "string",
                        "description": "Comma-separated department names"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Document indexed"
                    },
                    "400": {
                        "description": "Missing file or filePath"
                    },
                    "500": {
                        "description": "Parser unavailable or parse failed"
                    }
                }
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "N-TASK Core API",
	Description:      "N-TASK Core API Documentation",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
