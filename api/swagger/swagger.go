package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Global English Assignment API",
        "description": "Classroom schedule, tutor and student assignment engine for the tutoring program",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "ClassroomSchedules", "description": "Weekly slot placement per classroom"},
        {"name": "TutorAssignments", "description": "Tutor to classroom links and timetables"},
        {"name": "StudentAssignments", "description": "Student placement and mobility"},
        {"name": "Intervals", "description": "Closing validity intervals of any kind"}
    ],
    "paths": {
        "/classroom-schedules": {
            "post": {
                "tags": ["ClassroomSchedules"],
                "summary": "Place a schedule slot in a classroom",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignClassroomSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "DUPLICATE_SLOT or OVERLAP_CONFLICT", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "POLICY_VIOLATION or CAPACITY_EXCEEDED", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classroom-schedules/{id}/close": {
            "put": {
                "tags": ["ClassroomSchedules"],
                "summary": "Close a classroom slot assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/CloseIntervalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "NOT_ACTIVE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tutor-assignments": {
            "post": {
                "tags": ["TutorAssignments"],
                "summary": "Assign a tutor to a classroom",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignTutorRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "ALREADY_OCCUPIED, ALREADY_ASSIGNED or OVERLAP_CONFLICT", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tutor-assignments/change": {
            "post": {
                "tags": ["TutorAssignments"],
                "summary": "Replace the tutor of a classroom",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangeTutorRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Rejected, previous tutor kept", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tutor-assignments/{id}/close": {
            "put": {
                "tags": ["TutorAssignments"],
                "summary": "Close a tutor assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/CloseIntervalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student-assignments": {
            "post": {
                "tags": ["StudentAssignments"],
                "summary": "Assign a student to a classroom",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "ALREADY_ASSIGNED or OVERLAP_CONFLICT", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student-assignments/move": {
            "post": {
                "tags": ["StudentAssignments"],
                "summary": "Move a student between classrooms of the same grade group",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MoveStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "GRADE_GROUP_MISMATCH", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student-assignments/{id}/close": {
            "put": {
                "tags": ["StudentAssignments"],
                "summary": "Close a student assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/CloseIntervalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/intervals/{kind}/{id}/close": {
            "put": {
                "tags": ["Intervals"],
                "summary": "Close an interval of any kind",
                "parameters": [
                    {"name": "kind", "in": "path", "required": true, "type": "string", "enum": ["classroom-schedule", "tutor", "student"]},
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/CloseIntervalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "NOT_ACTIVE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classrooms/{id}/schedule-history": {
            "get": {
                "tags": ["ClassroomSchedules"],
                "summary": "Classroom schedule history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classrooms/{id}/tutor-history": {
            "get": {
                "tags": ["TutorAssignments"],
                "summary": "Classroom tutor history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classrooms/{id}/students": {
            "get": {
                "tags": ["StudentAssignments"],
                "summary": "Students in a classroom on a date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tutors/{id}/timetable": {
            "get": {
                "tags": ["TutorAssignments"],
                "summary": "Weekly timetable of a tutor",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK, meta.cache_hit tells whether it came from cache", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "AssignClassroomSlotRequest": {
            "type": "object",
            "required": ["classroom_id", "slot_id", "start_date"],
            "properties": {
                "classroom_id": {"type": "string"},
                "slot_id": {"type": "string"},
                "start_date": {"type": "string", "format": "date"}
            }
        },
        "AssignTutorRequest": {
            "type": "object",
            "required": ["tutor_id", "classroom_id", "start_date"],
            "properties": {
                "tutor_id": {"type": "string"},
                "classroom_id": {"type": "string"},
                "start_date": {"type": "string", "format": "date"},
                "end_date": {"type": "string", "format": "date"}
            }
        },
        "ChangeTutorRequest": {
            "type": "object",
            "required": ["classroom_id", "new_tutor_id", "start_date", "old_assignment_id"],
            "properties": {
                "classroom_id": {"type": "string"},
                "new_tutor_id": {"type": "string"},
                "start_date": {"type": "string", "format": "date"},
                "reason": {"type": "string"},
                "old_assignment_id": {"type": "string"},
                "old_end_date": {"type": "string", "format": "date"}
            }
        },
        "AssignStudentRequest": {
            "type": "object",
            "required": ["student_id", "classroom_id", "start_date"],
            "properties": {
                "student_id": {"type": "string"},
                "classroom_id": {"type": "string"},
                "start_date": {"type": "string", "format": "date"},
                "end_date": {"type": "string", "format": "date"}
            }
        },
        "MoveStudentRequest": {
            "type": "object",
            "required": ["student_id", "from_classroom_id", "to_classroom_id", "new_start_date"],
            "properties": {
                "student_id": {"type": "string"},
                "from_classroom_id": {"type": "string"},
                "to_classroom_id": {"type": "string"},
                "close_date": {"type": "string", "format": "date"},
                "new_start_date": {"type": "string", "format": "date"},
                "new_end_date": {"type": "string", "format": "date"}
            }
        },
        "CloseIntervalRequest": {
            "type": "object",
            "properties": {
                "end_date": {"type": "string", "format": "date"},
                "reason": {"type": "string"}
            }
        },
        "SlotRef": {
            "type": "object",
            "properties": {
                "classroom_id": {"type": "string"},
                "slot_id": {"type": "string"},
                "weekday": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"}
            }
        },
        "AssignmentRejection": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "message": {"type": "string"},
                "entity_ids": {"type": "object", "additionalProperties": {"type": "string"}},
                "rule": {"type": "string"},
                "slot": {"$ref": "#/definitions/SlotRef"},
                "conflicting_slot": {"$ref": "#/definitions/SlotRef"}
            }
        },
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
                "status": {"type": "integer"},
                "details": {"$ref": "#/definitions/AssignmentRejection"}
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
