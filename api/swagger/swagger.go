package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Gestion Formation API",
        "description": "Back-office API for the training center admin console",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Operator authentication"},
        {"name": "Apprenants", "description": "Student roster management"},
        {"name": "Formations", "description": "Course catalog"},
        {"name": "Inscriptions", "description": "Enrollment lifecycle"},
        {"name": "Paiements", "description": "Payment ledger and receipts"},
        {"name": "Stats", "description": "Dashboard aggregates"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate an operator",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Tokens issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate a refresh token",
                "responses": {
                    "200": {"description": "New token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/apprenants": {
            "get": {
                "tags": ["Apprenants"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "size", "in": "query", "type": "integer"},
                    {"name": "sortBy", "in": "query", "type": "string"},
                    {"name": "sortDirection", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Paged students", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Apprenants"],
                "summary": "Register a student",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate email or CIN", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/apprenants/{id}": {
            "get": {
                "tags": ["Apprenants"],
                "summary": "Get student detail with enrollments",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Student detail", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Apprenants"],
                "summary": "Update a student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Apprenants"],
                "summary": "Delete a student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/apprenants/export/{format}/{scope}": {
            "get": {
                "tags": ["Apprenants"],
                "summary": "Export the roster as CSV, Excel or PDF",
                "parameters": [
                    {"name": "format", "in": "path", "required": true, "type": "string", "enum": ["csv", "excel", "pdf"]},
                    {"name": "scope", "in": "path", "required": true, "type": "string", "enum": ["all", "page"]}
                ],
                "responses": {
                    "200": {"description": "Document"}
                }
            }
        },
        "/apprenants/import/{format}": {
            "post": {
                "tags": ["Apprenants"],
                "summary": "Import students from CSV or Excel",
                "parameters": [
                    {"name": "format", "in": "path", "required": true, "type": "string", "enum": ["csv", "excel"]}
                ],
                "responses": {
                    "200": {"description": "Import report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/formations": {
            "get": {
                "tags": ["Formations"],
                "summary": "List courses",
                "responses": {
                    "200": {"description": "Paged courses", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Formations"],
                "summary": "Create a course",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/formations/populaires": {
            "get": {
                "tags": ["Formations"],
                "summary": "Rank courses by enrollments",
                "responses": {
                    "200": {"description": "Ranked courses", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/inscriptions": {
            "get": {
                "tags": ["Inscriptions"],
                "summary": "List enrollments",
                "responses": {
                    "200": {"description": "Paged enrollments", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Inscriptions"],
                "summary": "Register a student to a course",
                "responses": {
                    "201": {"description": "Created in PENDING", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/inscriptions/{id}/confirmer": {
            "patch": {
                "tags": ["Inscriptions"],
                "summary": "Confirm a pending enrollment",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Confirmed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Enrollment is cancelled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/inscriptions/{id}/annuler": {
            "patch": {
                "tags": ["Inscriptions"],
                "summary": "Cancel an enrollment",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Cancelled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/paiements": {
            "get": {
                "tags": ["Paiements"],
                "summary": "List payments",
                "responses": {
                    "200": {"description": "Paged payments", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Paiements"],
                "summary": "Record a payment",
                "responses": {
                    "201": {"description": "Created, balances recomputed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/paiements/{id}/recu": {
            "get": {
                "tags": ["Paiements"],
                "summary": "Prepare a signed receipt download link",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Signed link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stats/dashboard": {
            "get": {
                "tags": ["Stats"],
                "summary": "Aggregated dashboard figures",
                "responses": {
                    "200": {"description": "Dashboard payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
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
        "Pagination": {
            "type": "object",
            "properties": {
                "current_page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_elements": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "has_next": {"type": "boolean"},
                "has_previous": {"type": "boolean"},
                "first_page": {"type": "boolean"},
                "last_page": {"type": "boolean"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
