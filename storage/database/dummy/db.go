// Package dummydb provides in-memory repositories for tests.
package dummydb

import (
	"sync"

	"github.com/philip-ks/eduforge/core/request"
	"github.com/philip-ks/eduforge/core/student"
	"github.com/philip-ks/eduforge/core/user"
)

type (
	DB struct {
		user    *userTable
		student *studentTable
		request *requestTable
		counter *counterTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	studentTable struct {
		sync.RWMutex
		students    map[string]*student.Student
		programs    map[string]student.Program
		enrollments map[string][]student.Enrollment   // by student id
		sessions    map[string][]string               // offering id -> session ids
		marks       map[string]map[string]string      // session id -> student id -> status
		feeAccounts map[string]student.FeeAccount     // by student id
		issues      map[string][]student.LibraryIssue // by student id
		settings    map[string]student.Settings
	}

	requestTable struct {
		sync.RWMutex
		table map[string]*request.Request
	}

	counterTable struct {
		sync.Mutex
		counters map[string]int64
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		student: &studentTable{
			students:    make(map[string]*student.Student),
			programs:    make(map[string]student.Program),
			enrollments: make(map[string][]student.Enrollment),
			sessions:    make(map[string][]string),
			marks:       make(map[string]map[string]string),
			feeAccounts: make(map[string]student.FeeAccount),
			issues:      make(map[string][]student.LibraryIssue),
			settings:    make(map[string]student.Settings),
		},
		request: &requestTable{table: make(map[string]*request.Request)},
		counter: &counterTable{counters: make(map[string]int64)},
	}
	return db, nil
}
