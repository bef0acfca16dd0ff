package kinematics

import "fmt"

type WarningKind string

const (
	WARN_DANGLING_JOINT_REFERENCE WarningKind = "DanglingJointReference"
	WARN_DUPLICATE_PARENT         WarningKind = "DuplicateParent"
	WARN_DUPLICATE_LINK           WarningKind = "DuplicateLink"
	WARN_JOINT_CYCLE              WarningKind = "JointCycle"
	WARN_UNRESOLVED_PACKAGE       WarningKind = "UnresolvedPackage"
	WARN_MESH_LOAD_FAILED         WarningKind = "MeshLoadFailed"
	WARN_PARSER_NOTE              WarningKind = "ParserNote"
)

// Warning records an entity that had to be skipped during assembly.
// Warnings are structured data for the caller; the core never renders
// or prints them on its own.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Subject string      `json:"subject"`
	Detail  string      `json:"detail"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s(%s): %s", w.Kind, w.Subject, w.Detail)
}

func warn(kind WarningKind, subject, format string, args ...interface{}) Warning {
	return Warning{Kind: kind, Subject: subject, Detail: fmt.Sprintf(format, args...)}
}
