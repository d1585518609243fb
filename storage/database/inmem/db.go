// Package inmem provides map-backed repositories for tests and local
// development. All repositories sharing a DB see each other's writes.
package inmem

import (
	"sync"

	"github.com/taleemhub/backoffice/core/attendance"
	"github.com/taleemhub/backoffice/core/course"
	"github.com/taleemhub/backoffice/core/dailystat"
	"github.com/taleemhub/backoffice/core/employee"
	"github.com/taleemhub/backoffice/core/enrollment"
	"github.com/taleemhub/backoffice/core/target"
)

type DB struct {
	mu sync.RWMutex

	employees   map[string]employee.Employee
	courses     map[string]course.Course
	enrollments map[string]enrollment.Enrollment
	dailyStats  map[string]dailystat.DailyStat
	targets     map[string]target.EmployeeTarget
	alerts      map[string]target.Alert
	records     map[string]attendance.Record
}

func NewDB() *DB {
	return &DB{
		employees:   make(map[string]employee.Employee),
		courses:     make(map[string]course.Course),
		enrollments: make(map[string]enrollment.Enrollment),
		dailyStats:  make(map[string]dailystat.DailyStat),
		targets:     make(map[string]target.EmployeeTarget),
		alerts:      make(map[string]target.Alert),
		records:     make(map[string]attendance.Record),
	}
}
