package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Saju Admin API",
        "description": "Review and moderation of gyeokguk judgment suggestions.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Console manager authentication"},
        {"name": "Suggestions", "description": "Gyeokguk suggestion review workflow"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Issue an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LoginResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current manager",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/suggestions": {
            "get": {
                "tags": ["Suggestions"],
                "summary": "List gyeokguk suggestions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "per_page", "in": "query", "type": "integer"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["all", "pending", "approved", "rejected"]},
                    {"name": "suggestion_type", "in": "query", "type": "string", "enum": ["decade_sky", "decade_earth", "year_sky", "year_earth"]},
                    {"name": "gyeokguk_name", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SuggestionListResponse"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "post": {
                "tags": ["Suggestions"],
                "summary": "Propose a correction",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSuggestionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/SuggestionResponse"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/suggestions/export": {
            "get": {
                "tags": ["Suggestions"],
                "summary": "Export the filtered ledger",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "suggestion_type", "in": "query", "type": "string"},
                    {"name": "gyeokguk_name", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "403": {"description": "Admin role required", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/suggestions/{id}": {
            "get": {
                "tags": ["Suggestions"],
                "summary": "Get a suggestion",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SuggestionResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "delete": {
                "tags": ["Suggestions"],
                "summary": "Delete a suggestion in any state",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/MutationResponse"}},
                    "403": {"description": "Admin role required", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/suggestions/{id}/approve": {
            "post": {
                "tags": ["Suggestions"],
                "summary": "Approve a pending suggestion",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApproveSuggestionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Approved", "schema": {"$ref": "#/definitions/MutationResponse"}},
                    "409": {"description": "Already reviewed", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/suggestions/{id}/reject": {
            "post": {
                "tags": ["Suggestions"],
                "summary": "Reject a pending suggestion",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RejectSuggestionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Rejected", "schema": {"$ref": "#/definitions/MutationResponse"}},
                    "409": {"description": "Already reviewed", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "code": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "access_token": {"type": "string"},
                "token_type": {"type": "string", "example": "Bearer"},
                "expires_in": {"type": "integer"},
                "issued_at": {"type": "string", "format": "date-time"},
                "user": {"$ref": "#/definitions/UserInfo"}
            }
        },
        "UserInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "full_name": {"type": "string"},
                "role": {"type": "string", "enum": ["SUPERADMIN", "ADMIN", "MANAGER"]}
            }
        },
        "RoleSlots": {
            "type": "object",
            "description": "Slot mapping; legacy records may carry an ordered list instead.",
            "properties": {
                "first": {"type": "string"},
                "second": {"type": "string"},
                "third": {"type": "string"},
                "fourth": {"type": "string"}
            }
        },
        "Suggestion": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "suggestion_type": {"type": "string"},
                "gyeokguk_name": {"type": "string"},
                "target_char": {"type": "string"},
                "code": {"type": "string"},
                "original_result": {"type": "string"},
                "original_reason": {"type": "string"},
                "original_roles": {"$ref": "#/definitions/RoleSlots"},
                "suggested_result": {"type": "string"},
                "suggested_reason": {"type": "string"},
                "suggested_roles": {"$ref": "#/definitions/RoleSlots"},
                "status": {"type": "string", "enum": ["pending", "approved", "rejected"]},
                "rejection_reason": {"type": "string"},
                "suggested_by": {"type": "string"},
                "reviewed_by": {"type": "string"},
                "reviewed_at": {"type": "string", "format": "date-time"},
                "sample_order": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "current_page": {"type": "integer"},
                "per_page": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "SuggestionListResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "suggestions": {"type": "array", "items": {"$ref": "#/definitions/Suggestion"}},
                "pagination": {"$ref": "#/definitions/Pagination"}
            }
        },
        "SuggestionResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "suggestion": {"$ref": "#/definitions/Suggestion"}
            }
        },
        "MutationResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "suggestion": {"$ref": "#/definitions/Suggestion"}
            }
        },
        "ApproveSuggestionRequest": {
            "type": "object",
            "required": ["suggested_result"],
            "properties": {
                "suggested_result": {"type": "string", "enum": ["성", "패", "성중유패", "패중유성", "성패공존"]},
                "suggested_reason": {"type": "string"},
                "suggested_roles": {"$ref": "#/definitions/RoleSlots"}
            }
        },
        "RejectSuggestionRequest": {
            "type": "object",
            "required": ["reason"],
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "CreateSuggestionRequest": {
            "type": "object",
            "required": ["suggestion_type", "gyeokguk_name", "target_char", "suggested_result"],
            "properties": {
                "suggestion_type": {"type": "string", "enum": ["decade_sky", "decade_earth", "year_sky", "year_earth"]},
                "gyeokguk_name": {"type": "string"},
                "target_char": {"type": "string"},
                "code": {"type": "string"},
                "original_result": {"type": "string"},
                "original_reason": {"type": "string"},
                "original_roles": {"$ref": "#/definitions/RoleSlots"},
                "suggested_result": {"type": "string"},
                "suggested_reason": {"type": "string"},
                "suggested_roles": {"$ref": "#/definitions/RoleSlots"},
                "sample_order": {"type": "string"}
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
