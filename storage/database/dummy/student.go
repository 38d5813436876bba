package dummydb

import (
	"context"
	"sort"

	"github.com/philip-ks/eduforge/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

// Seed helpers. The student repository is read-only in the service layer;
// tests populate the tables directly through these.

func (db *DB) AddStudent(stu student.Student) {
	db.student.Lock()
	defer db.student.Unlock()
	db.student.students[stu.ID] = &stu
}

func (db *DB) AddProgram(prog student.Program) {
	db.student.Lock()
	defer db.student.Unlock()
	db.student.programs[prog.ID] = prog
}

func (db *DB) AddEnrollment(studentID string, enr student.Enrollment) {
	db.student.Lock()
	defer db.student.Unlock()
	db.student.enrollments[studentID] = append(db.student.enrollments[studentID], enr)
}

func (db *DB) AddSession(offeringID, sessionID string) {
	db.student.Lock()
	defer db.student.Unlock()
	db.student.sessions[offeringID] = append(db.student.sessions[offeringID], sessionID)
}

func (db *DB) AddMark(sessionID, studentID, status string) {
	db.student.Lock()
	defer db.student.Unlock()
	if db.student.marks[sessionID] == nil {
		db.student.marks[sessionID] = make(map[string]string)
	}
	db.student.marks[sessionID][studentID] = status
}

func (db *DB) SetFeeAccount(acct student.FeeAccount) {
	db.student.Lock()
	defer db.student.Unlock()
	db.student.feeAccounts[acct.StudentID] = acct
}

func (db *DB) AddLibraryIssue(studentID string, issue student.LibraryIssue) {
	db.student.Lock()
	defer db.student.Unlock()
	db.student.issues[studentID] = append(db.student.issues[studentID], issue)
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if stu, ok := repo.db.students[id]; ok {
		return *stu, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByUserID(ctx context.Context, userID string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, stu := range repo.db.students {
		if stu.UserID == userID {
			return *stu, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetProgram(ctx context.Context, id string) (student.Program, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if prog, ok := repo.db.programs[id]; ok {
		return prog, nil
	}
	return student.Program{}, student.ErrNotFound
}

func (repo *studentRepository) QueryEnrollments(ctx context.Context, studentID string) ([]student.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return append([]student.Enrollment(nil), repo.db.enrollments[studentID]...), nil
}

func (repo *studentRepository) CountSessions(ctx context.Context, offeringID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.sessions[offeringID]), nil
}

func (repo *studentRepository) CountPresentMarks(ctx context.Context, studentID, offeringID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, sessionID := range repo.db.sessions[offeringID] {
		if repo.db.marks[sessionID][studentID] == student.MarkPresent {
			count++
		}
	}
	return count, nil
}

func (repo *studentRepository) GetFeeAccount(ctx context.Context, studentID string) (student.FeeAccount, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if acct, ok := repo.db.feeAccounts[studentID]; ok {
		return acct, nil
	}
	return student.FeeAccount{}, student.ErrFeeAccountNotFound
}

func (repo *studentRepository) QueryOpenLibraryIssues(ctx context.Context, studentID string, limit int) ([]student.LibraryIssue, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var issues []student.LibraryIssue
	for _, issue := range repo.db.issues[studentID] {
		if issue.Status == student.LibraryIssueOpen {
			issues = append(issues, issue)
		}
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].DueDate.Before(issues[j].DueDate) })
	if limit > 0 && len(issues) > limit {
		issues = issues[:limit]
	}
	return issues, nil
}

func (repo *studentRepository) GetSettings(ctx context.Context, studentID string) (student.Settings, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if settings, ok := repo.db.settings[studentID]; ok {
		return settings, nil
	}
	return student.Settings{}, student.ErrNotFound
}

func (repo *studentRepository) UpsertSettings(ctx context.Context, settings student.Settings) (student.Settings, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.settings[settings.StudentID] = settings
	return settings, nil
}
