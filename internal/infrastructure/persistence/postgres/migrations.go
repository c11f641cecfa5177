package postgres

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// Uniqueness constraints here back the domain's conflict guarantees: duplicate
// grades, duplicate registrations, duplicate placements and duplicate
// evaluations are all rejected at this level regardless of application races.
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_users_departments", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_courses", UpSQL: migration002Up, DownSQL: migration002Down},
		{Version: 3, Name: "create_grades", UpSQL: migration003Up, DownSQL: migration003Down},
		{Version: 4, Name: "create_registrations", UpSQL: migration004Up, DownSQL: migration004Down},
		{Version: 5, Name: "create_placements_evaluations", UpSQL: migration005Up, DownSQL: migration005Down},
		{Version: 6, Name: "create_notifications_audit", UpSQL: migration006Up, DownSQL: migration006Down},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS departments (
	name TEXT PRIMARY KEY,
	placement_capacity INTEGER NOT NULL DEFAULT 0 CHECK (placement_capacity >= 0),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	student_number TEXT,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL,
	department TEXT NOT NULL DEFAULT '',
	current_year INTEGER NOT NULL DEFAULT 1,
	current_semester INTEGER NOT NULL DEFAULT 1,
	status TEXT NOT NULL DEFAULT 'active',
	cgpa NUMERIC(4,2) NOT NULL DEFAULT 0,
	total_credits_earned INTEGER NOT NULL DEFAULT 0,
	probation BOOLEAN NOT NULL DEFAULT FALSE,
	dismissed BOOLEAN NOT NULL DEFAULT FALSE,
	standing_updated_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_student_number
	ON users (student_number) WHERE student_number IS NOT NULL AND student_number <> '';
CREATE INDEX IF NOT EXISTS idx_users_role ON users (role);
CREATE INDEX IF NOT EXISTS idx_users_department_role ON users (department, role);
`

const migration001Down = `
DROP TABLE IF EXISTS users;
DROP TABLE IF EXISTS departments;
`

const migration002Up = `
CREATE TABLE IF NOT EXISTS courses (
	id UUID PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	department TEXT NOT NULL,
	credits INTEGER NOT NULL CHECK (credits BETWEEN 1 AND 6),
	year INTEGER NOT NULL CHECK (year BETWEEN 1 AND 4),
	semester INTEGER NOT NULL CHECK (semester IN (1, 2)),
	prerequisites TEXT[] NOT NULL DEFAULT '{}',
	instructor_id UUID,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_courses_catalog ON courses (department, year, semester);
`

const migration002Down = `
DROP TABLE IF EXISTS courses;
`

const migration003Up = `
CREATE TABLE IF NOT EXISTS grades (
	id UUID PRIMARY KEY,
	student_id UUID NOT NULL REFERENCES users (id),
	course_id UUID NOT NULL REFERENCES courses (id),
	course_code TEXT NOT NULL,
	instructor_id UUID NOT NULL,
	department TEXT NOT NULL,
	academic_year TEXT NOT NULL,
	semester INTEGER NOT NULL CHECK (semester IN (1, 2)),
	midterm INTEGER NOT NULL DEFAULT 0,
	continuous INTEGER NOT NULL DEFAULT 0,
	final_exam INTEGER NOT NULL DEFAULT 0,
	total_mark INTEGER NOT NULL DEFAULT 0,
	letter TEXT NOT NULL DEFAULT '',
	grade_points NUMERIC(4,2) NOT NULL DEFAULT 0,
	repeat_required BOOLEAN NOT NULL DEFAULT FALSE,
	status TEXT NOT NULL,
	rejection_reason TEXT NOT NULL DEFAULT '',
	instructor_comment TEXT NOT NULL DEFAULT '',
	head_comment TEXT NOT NULL DEFAULT '',
	registrar_comment TEXT NOT NULL DEFAULT '',
	submitted_at TIMESTAMPTZ,
	submitted_by UUID,
	approved_at TIMESTAMPTZ,
	approved_by UUID,
	finalized_at TIMESTAMPTZ,
	finalized_by UUID,
	locked_at TIMESTAMPTZ,
	locked_by UUID,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (student_id, course_id, academic_year)
);

CREATE INDEX IF NOT EXISTS idx_grades_student ON grades (student_id, academic_year);
CREATE INDEX IF NOT EXISTS idx_grades_status ON grades (academic_year, semester, status);
`

const migration003Down = `
DROP TABLE IF EXISTS grades;
`

const migration004Up = `
CREATE TABLE IF NOT EXISTS registration_periods (
	id UUID PRIMARY KEY,
	period_type TEXT NOT NULL,
	academic_year TEXT NOT NULL,
	semester INTEGER NOT NULL CHECK (semester IN (1, 2)),
	department TEXT NOT NULL,
	start_date TIMESTAMPTZ NOT NULL,
	end_date TIMESTAMPTZ NOT NULL,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_periods_active_key
	ON registration_periods (period_type, academic_year, semester, department)
	WHERE active;

CREATE TABLE IF NOT EXISTS registrations (
	id UUID PRIMARY KEY,
	number TEXT NOT NULL UNIQUE,
	student_id UUID NOT NULL REFERENCES users (id),
	academic_year TEXT NOT NULL,
	study_year INTEGER NOT NULL CHECK (study_year BETWEEN 1 AND 4),
	semester INTEGER NOT NULL CHECK (semester IN (1, 2)),
	items JSONB NOT NULL,
	total_credits INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (student_id, academic_year, semester)
);

CREATE TABLE IF NOT EXISTS registration_sequences (
	academic_year TEXT NOT NULL,
	study_year INTEGER NOT NULL,
	semester INTEGER NOT NULL,
	value INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (academic_year, study_year, semester)
);
`

const migration004Down = `
DROP TABLE IF EXISTS registration_sequences;
DROP TABLE IF EXISTS registrations;
DROP TABLE IF EXISTS registration_periods;
`

const migration005Up = `
CREATE TABLE IF NOT EXISTS placement_requests (
	id UUID PRIMARY KEY,
	student_id UUID NOT NULL REFERENCES users (id),
	academic_year TEXT NOT NULL,
	first_choice TEXT NOT NULL,
	second_choice TEXT NOT NULL DEFAULT '',
	statement TEXT NOT NULL DEFAULT '',
	cgpa NUMERIC(4,2) NOT NULL DEFAULT 0,
	total_credits INTEGER NOT NULL DEFAULT 0,
	score INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	approved_department TEXT NOT NULL DEFAULT '',
	rejection_reason TEXT NOT NULL DEFAULT '',
	reviewed_by UUID,
	reviewed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (student_id, academic_year)
);

CREATE INDEX IF NOT EXISTS idx_placements_ranking
	ON placement_requests (academic_year, status, score DESC);
CREATE INDEX IF NOT EXISTS idx_placements_approved
	ON placement_requests (approved_department, academic_year)
	WHERE status = 'approved';

CREATE TABLE IF NOT EXISTS evaluations (
	id UUID PRIMARY KEY,
	student_id UUID NOT NULL REFERENCES users (id),
	course_id UUID NOT NULL REFERENCES courses (id),
	instructor_id UUID NOT NULL,
	academic_year TEXT NOT NULL,
	rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	comment TEXT NOT NULL DEFAULT '',
	submitted_at TIMESTAMPTZ NOT NULL,
	UNIQUE (student_id, course_id, academic_year)
);

CREATE INDEX IF NOT EXISTS idx_evaluations_student
	ON evaluations (student_id, academic_year);
`

const migration005Down = `
DROP TABLE IF EXISTS evaluations;
DROP TABLE IF EXISTS placement_requests;
`

const migration006Up = `
CREATE TABLE IF NOT EXISTS notifications (
	id UUID PRIMARY KEY,
	recipient_id UUID NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	category TEXT NOT NULL,
	link TEXT NOT NULL DEFAULT '',
	read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_recipient
	ON notifications (recipient_id, created_at DESC);

CREATE TABLE IF NOT EXISTS audit_log (
	id UUID PRIMARY KEY,
	actor_id UUID NOT NULL,
	action TEXT NOT NULL,
	target_id TEXT NOT NULL,
	details JSONB,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_target ON audit_log (target_id, created_at DESC);
`

const migration006Down = `
DROP TABLE IF EXISTS audit_log;
DROP TABLE IF EXISTS notifications;
`
