package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Edu Cert API",
        "description": "Role-gated registry of students, courses and certificates",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "API keys and access tokens"},
        {"name": "Students", "description": "Student registry"},
        {"name": "Instructors", "description": "Instructor role registry"},
        {"name": "Courses", "description": "Course catalog, enrollment and completion"},
        {"name": "Certificates", "description": "Certificate issuance and verification"},
        {"name": "Events", "description": "Notification log and counters"}
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/auth/keys": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register an API key for a principal",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/auth/token": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Exchange an API key for an access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/students": {
            "post": {
                "tags": ["Students"],
                "summary": "Enroll the caller as a student",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Already enrolled"}
                }
            }
        },
        "/students/{principal}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get a student record",
                "parameters": [{"name": "principal", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/students/{principal}/courses": {
            "get": {
                "tags": ["Students"],
                "summary": "List a student's course enrollments in enrollment order",
                "parameters": [{"name": "principal", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/students/{principal}/courses/{id}/completion": {
            "get": {
                "tags": ["Students"],
                "summary": "Check whether a student completed a course",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/students/{principal}/certificates": {
            "get": {
                "tags": ["Students"],
                "summary": "List certificate ids held by a student",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/instructors": {
            "post": {
                "tags": ["Instructors"],
                "summary": "Authorize a principal as instructor (admin only)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Authorized"},
                    "403": {"description": "Caller is not the admin"}
                }
            }
        },
        "/instructors/{principal}": {
            "get": {
                "tags": ["Instructors"],
                "summary": "Get an instructor record",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/courses": {
            "post": {
                "tags": ["Courses"],
                "summary": "Create a course (instructor only)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "Caller is not an instructor"}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get course details",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/courses/{id}/status": {
            "patch": {
                "tags": ["Courses"],
                "summary": "Activate or deactivate a course (admin only)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Updated"},
                    "403": {"description": "Caller is not the admin"}
                }
            }
        },
        "/courses/{id}/enrollments": {
            "post": {
                "tags": ["Courses"],
                "summary": "Enroll the caller in a course with payment",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Enrolled"},
                    "402": {"description": "Payment below course fee"},
                    "409": {"description": "Course unavailable or already on the roster"},
                    "412": {"description": "Caller holds no student record"},
                    "502": {"description": "Value transfer failed"}
                }
            }
        },
        "/courses/{id}/completions": {
            "post": {
                "tags": ["Courses"],
                "summary": "Mark a course completed for a student (course owner only)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Recorded"},
                    "403": {"description": "Caller does not own the course"}
                }
            }
        },
        "/courses/{id}/roster": {
            "get": {
                "tags": ["Courses"],
                "summary": "List the course roster in enrollment order",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/courses/{id}/roster/export": {
            "get": {
                "tags": ["Courses"],
                "summary": "Export the course roster as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV payload"}
                }
            }
        },
        "/certificates": {
            "post": {
                "tags": ["Certificates"],
                "summary": "Issue a certificate (course owner only)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Issued"},
                    "412": {"description": "Prerequisite not met"}
                }
            }
        },
        "/certificates/{id}": {
            "get": {
                "tags": ["Certificates"],
                "summary": "Get a certificate",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/certificates/{id}/verify": {
            "get": {
                "tags": ["Certificates"],
                "summary": "Verify a certificate id",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/certificates/{id}/pdf": {
            "get": {
                "tags": ["Certificates"],
                "summary": "Download a certificate as PDF",
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF payload"}
                }
            }
        },
        "/certificates/{id}/share": {
            "get": {
                "tags": ["Certificates"],
                "summary": "Create an expiring share link",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/verify": {
            "get": {
                "tags": ["Certificates"],
                "summary": "Resolve a certificate share token",
                "parameters": [{"name": "token", "in": "query", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        },
        "/events": {
            "get": {
                "tags": ["Events"],
                "summary": "List emitted notifications in commit order",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Caller is not the admin"}
                }
            }
        },
        "/stats": {
            "get": {
                "tags": ["Events"],
                "summary": "Registry counters",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
