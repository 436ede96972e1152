// Package docs holds the Swagger document served at /docs. It follows
// the swag layout and is kept in step with the @Router annotations in
// internal/httpserver by TestDocCoversAnnotatedRoutes.
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
        "/api/login": {
            "post": {
                "description": "Login with email and password and get a bearer token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login (API)",
                "parameters": [
                    {
                        "description": "Login input",
                        "name": "input",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/httpserver.loginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpserver.tokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/chats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "The caller's chats with previews, most recently active first",
                "produces": ["application/json"],
                "tags": ["chats"],
                "summary": "List chats",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.ChatSummary"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/chats/{chatID}/messages": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["chats"],
                "summary": "Chat history",
                "parameters": [
                    {"type": "integer", "description": "Chat ID", "name": "chatID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.Thread"}},
                    "403": {"description": "Forbidden", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "JSON body {\"content\": \"...\"} or a multipart form with content and file",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chats"],
                "summary": "Send a message (API)",
                "parameters": [
                    {"type": "integer", "description": "Chat ID", "name": "chatID", "in": "path", "required": true},
                    {"description": "Message", "name": "input", "in": "body", "schema": {"$ref": "#/definitions/httpserver.messageCreateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Message"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "403": {"description": "Forbidden", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/users/{username}/chat": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the chat with the given user, creating it on first use",
                "produces": ["application/json"],
                "tags": ["chats"],
                "summary": "Open a chat",
                "parameters": [
                    {"type": "string", "description": "Other user", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Chat"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["shop"],
                "summary": "List products",
                "parameters": [
                    {"type": "boolean", "description": "Only discounted products", "name": "promotions", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/service.ProductView"}}}
                }
            }
        },
        "/api/products/{productID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["shop"],
                "summary": "Get a product",
                "parameters": [
                    {"type": "integer", "description": "Product ID", "name": "productID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.ProductView"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/register": {
            "post": {
                "description": "Multipart form; redirects to /login on success",
                "consumes": ["multipart/form-data"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "description": "Email", "name": "email", "in": "formData", "required": true},
                    {"type": "string", "description": "Password", "name": "password", "in": "formData", "required": true},
                    {"type": "string", "description": "Password again", "name": "confirm_password", "in": "formData", "required": true},
                    {"type": "string", "description": "About", "name": "description", "in": "formData"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "csv", "description": "Skills", "name": "skills", "in": "formData"},
                    {"type": "file", "description": "Avatar image", "name": "avatar", "in": "formData"}
                ],
                "responses": {"303": {"description": "See Other"}}
            }
        },
        "/login": {
            "post": {
                "description": "Form login; sets the session cookie and redirects to /profile",
                "consumes": ["application/x-www-form-urlencoded"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"type": "string", "description": "Email", "name": "email", "in": "formData", "required": true},
                    {"type": "string", "description": "Password", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {"303": {"description": "See Other"}}
            }
        },
        "/profile": {
            "post": {
                "consumes": ["multipart/form-data"],
                "tags": ["articles"],
                "summary": "Publish an article",
                "parameters": [
                    {"type": "string", "description": "Title", "name": "title", "in": "formData", "required": true},
                    {"type": "string", "description": "Markdown body", "name": "content", "in": "formData", "required": true},
                    {"type": "file", "description": "Cover image", "name": "image", "in": "formData"},
                    {"type": "file", "description": "Attachment", "name": "file", "in": "formData"}
                ],
                "responses": {"303": {"description": "See Other"}}
            }
        },
        "/profile/{username}": {
            "get": {
                "description": "A member's profile with their articles, newest first",
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "User profile",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.Profile"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/articles": {
            "get": {
                "produces": ["application/json"],
                "tags": ["articles"],
                "summary": "All articles",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/chat/{chatID}/send": {
            "post": {
                "description": "Form post from the chat page; redirects back to the chat",
                "consumes": ["multipart/form-data"],
                "tags": ["chats"],
                "summary": "Send a message",
                "parameters": [
                    {"type": "integer", "description": "Chat ID", "name": "chatID", "in": "path", "required": true},
                    {"type": "string", "description": "Message text (Markdown)", "name": "content", "in": "formData"},
                    {"type": "file", "description": "Attachment", "name": "file", "in": "formData"}
                ],
                "responses": {"303": {"description": "See Other"}}
            }
        }
    },
    "definitions": {
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "description": {"type": "string"},
                "skills": {"type": "array", "items": {"type": "string"}},
                "avatar": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "domain.Chat": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "created_at": {"type": "string"}
            }
        },
        "domain.ChatSummary": {
            "type": "object",
            "properties": {
                "chat": {"$ref": "#/definitions/domain.Chat"},
                "other_user": {"$ref": "#/definitions/domain.User"},
                "last_message": {"type": "string"},
                "last_time": {"type": "string"}
            }
        },
        "domain.Message": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "chat_id": {"type": "integer"},
                "sender_id": {"type": "integer"},
                "content": {"type": "string"},
                "attachment": {"type": "object"},
                "created_at": {"type": "string"}
            }
        },
        "service.Thread": {
            "type": "object",
            "properties": {
                "chat": {"$ref": "#/definitions/domain.Chat"},
                "other_user": {"$ref": "#/definitions/domain.User"},
                "messages": {"type": "array", "items": {"type": "object"}}
            }
        },
        "service.Profile": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/domain.User"},
                "articles": {"type": "array", "items": {"type": "object"}},
                "is_own": {"type": "boolean"}
            }
        },
        "service.ProductView": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "price_cents": {"type": "integer"},
                "discount_percent": {"type": "integer"},
                "image_path": {"type": "string"},
                "sale_price_cents": {"type": "integer"},
                "on_promotion": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "httpserver.loginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "httpserver.messageCreateRequest": {
            "type": "object",
            "properties": {
                "content": {"type": "string"}
            }
        },
        "httpserver.tokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_at": {"type": "string"},
                "user": {"$ref": "#/definitions/domain.User"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "devconnect API",
	Description:      "Profiles, articles, direct messages and the shop.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
