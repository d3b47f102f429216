package authz

import (
	"clinic-management-server/internal/models"
)

// Action identifies what an actor wants to do with a resource.
type Action string

const (
	ActionCreate       Action = "create"
	ActionRead         Action = "read"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionList         Action = "list"
	ActionListAll      Action = "list_all"
	ActionUpdateStatus Action = "update_status"
	ActionCancel       Action = "cancel"
)

// Actor is the principal a request acts as. DoctorID and PatientID carry
// the actor's profile row ids when the user has one; handlers fill them
// in before consulting the policy.
type Actor struct {
	UserID    string
	UserType  models.UserType
	DoctorID  string
	PatientID string
}

// Anonymous is the unauthenticated actor.
var Anonymous = Actor{}

// Resource is implemented by every protected resource descriptor.
type Resource interface {
	Kind() string
}

// PatientProfile describes a patient's medical profile.
type PatientProfile struct {
	PatientID   string
	OwnerUserID string
}

// AppointmentRef describes an appointment by its two parties.
type AppointmentRef struct {
	PatientID string
	DoctorID  string
}

// ClinicRef describes a clinic record.
type ClinicRef struct{}

// ScheduleRef describes a doctor's schedule entry.
type ScheduleRef struct {
	DoctorID string
}

func (PatientProfile) Kind() string { return "patient_profile" }
func (AppointmentRef) Kind() string { return "appointment" }
func (ClinicRef) Kind() string      { return "clinic" }
func (ScheduleRef) Kind() string    { return "schedule" }

type rule func(actor Actor, resource Resource) bool

// policies maps (resource kind, action) to an allow rule. Anything not in
// the table is denied, including admin requests for unlisted actions.
var policies = map[string]map[Action]rule{
	"patient_profile": {
		ActionRead:   patientProfileReadUpdate,
		ActionUpdate: patientProfileReadUpdate,
		ActionDelete: func(a Actor, r Resource) bool {
			return isAdmin(a) || ownsPatientProfile(a, r.(PatientProfile))
		},
	},
	"appointment": {
		ActionRead: func(a Actor, r Resource) bool {
			ap := r.(AppointmentRef)
			return isAdmin(a) || isAssignedDoctor(a, ap) || isInvolvedPatient(a, ap)
		},
		ActionUpdateStatus: func(a Actor, r Resource) bool {
			return isAdmin(a) || isAssignedDoctor(a, r.(AppointmentRef))
		},
		// Cancellation is the one status change the booking patient may
		// request themselves; the lifecycle table still decides whether
		// the appointment is in a cancellable state.
		ActionCancel: func(a Actor, r Resource) bool {
			ap := r.(AppointmentRef)
			return isAdmin(a) || isAssignedDoctor(a, ap) || isInvolvedPatient(a, ap)
		},
	},
	"clinic": {
		ActionCreate:  allowAnyone,
		ActionList:    allowAnyone,
		ActionListAll: adminOnly,
		ActionRead:    adminOnly,
		ActionUpdate:  adminOnly,
		ActionDelete:  adminOnly,
	},
	"schedule": {
		ActionCreate: scheduleOwnerOrAdmin,
		ActionUpdate: scheduleOwnerOrAdmin,
		ActionDelete: scheduleOwnerOrAdmin,
	},
}

// Can reports whether actor may perform action on resource. It is pure
// and fails closed: unknown resource kinds, unknown actions, and nil
// resources all deny.
func Can(actor Actor, action Action, resource Resource) bool {
	if resource == nil {
		return false
	}
	actions, ok := policies[resource.Kind()]
	if !ok {
		return false
	}
	allow, ok := actions[action]
	if !ok {
		return false
	}
	return allow(actor, resource)
}

func isAdmin(a Actor) bool   { return a.UserType == models.UserTypeAdmin }
func isDoctor(a Actor) bool  { return a.UserType == models.UserTypeDoctor }
func isPatient(a Actor) bool { return a.UserType == models.UserTypePatient }

func allowAnyone(Actor, Resource) bool { return true }

func adminOnly(a Actor, _ Resource) bool { return isAdmin(a) }

// Patients see their own profile; doctors and admins see any.
func patientProfileReadUpdate(a Actor, r Resource) bool {
	return isAdmin(a) || isDoctor(a) || ownsPatientProfile(a, r.(PatientProfile))
}

func ownsPatientProfile(a Actor, p PatientProfile) bool {
	if !isPatient(a) {
		return false
	}
	if a.UserID != "" && a.UserID == p.OwnerUserID {
		return true
	}
	return a.PatientID != "" && a.PatientID == p.PatientID
}

func isInvolvedPatient(a Actor, ap AppointmentRef) bool {
	return isPatient(a) && a.PatientID != "" && a.PatientID == ap.PatientID
}

func isAssignedDoctor(a Actor, ap AppointmentRef) bool {
	return isDoctor(a) && a.DoctorID != "" && a.DoctorID == ap.DoctorID
}

func scheduleOwnerOrAdmin(a Actor, r Resource) bool {
	s := r.(ScheduleRef)
	return isAdmin(a) || (isDoctor(a) && a.DoctorID != "" && a.DoctorID == s.DoctorID)
}
