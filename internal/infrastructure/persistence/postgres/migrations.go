package postgres

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATION SQL
// ══════════════════════════════════════════════════════════════════════════════

// Migration 001: profiles and auth tokens.
const migration001Up = `
CREATE TABLE IF NOT EXISTS profiles (
	id UUID PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	birth_date DATE,
	can_teach BOOLEAN NOT NULL DEFAULT FALSE,
	tokens INTEGER NOT NULL DEFAULT 0 CHECK (tokens >= 0),
	headline VARCHAR(70) NOT NULL DEFAULT '',
	biography VARCHAR(2048) NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS auth_tokens (
	token TEXT PRIMARY KEY,
	profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_auth_tokens_profile ON auth_tokens(profile_id);
`

const migration001Down = `
DROP TABLE IF EXISTS auth_tokens;
DROP TABLE IF EXISTS profiles;
`

// Migration 002: subject/stage lookups, lessons and memberships.
// The unique index on (lesson_id, student_id) is what makes a concurrent
// duplicate join lose with a conflict instead of creating a second row.
const migration002Up = `
CREATE TABLE IF NOT EXISTS subjects (
	id UUID PRIMARY KEY,
	name VARCHAR(128) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS stages (
	id UUID PRIMARY KEY,
	name VARCHAR(128) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS lessons (
	id UUID PRIMARY KEY,
	teacher_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	title VARCHAR(64) NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	subject_id UUID NOT NULL REFERENCES subjects(id),
	stage_id UUID NOT NULL REFERENCES stages(id),
	short_description VARCHAR(255) NOT NULL DEFAULT '',
	long_description VARCHAR(2048) NOT NULL DEFAULT '',
	price INTEGER NOT NULL CHECK (price >= 0),
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lessons_teacher ON lessons(teacher_id);

CREATE TABLE IF NOT EXISTS lesson_memberships (
	id UUID PRIMARY KEY,
	lesson_id UUID NOT NULL REFERENCES lessons(id) ON DELETE CASCADE,
	student_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL,
	CONSTRAINT uq_membership_lesson_student UNIQUE (lesson_id, student_id)
);

CREATE INDEX IF NOT EXISTS idx_memberships_student ON lesson_memberships(student_id);

INSERT INTO subjects (id, name) VALUES
	(gen_random_uuid(), 'Mathematics'),
	(gen_random_uuid(), 'Physics'),
	(gen_random_uuid(), 'Chemistry'),
	(gen_random_uuid(), 'Biology'),
	(gen_random_uuid(), 'English'),
	(gen_random_uuid(), 'Computer Science')
ON CONFLICT (name) DO NOTHING;

INSERT INTO stages (id, name) VALUES
	(gen_random_uuid(), 'Primary school'),
	(gen_random_uuid(), 'Middle school'),
	(gen_random_uuid(), 'High school'),
	(gen_random_uuid(), 'University')
ON CONFLICT (name) DO NOTHING;
`

const migration002Down = `
DROP TABLE IF EXISTS lesson_memberships;
DROP TABLE IF EXISTS lessons;
DROP TABLE IF EXISTS stages;
DROP TABLE IF EXISTS subjects;
`

// Migration 003: rooms and notifications.
// The partial unique index allows any number of closed rooms per pair but
// at most one open one, which is what makes reopen idempotent under
// concurrency.
const migration003Up = `
CREATE TABLE IF NOT EXISTS rooms (
	id UUID PRIMARY KEY,
	lesson_id UUID NOT NULL REFERENCES lessons(id) ON DELETE CASCADE,
	student_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	key VARCHAR(100) NOT NULL UNIQUE,
	is_open BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	close_date TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_rooms_open_pair
	ON rooms(lesson_id, student_id) WHERE is_open;

CREATE INDEX IF NOT EXISTS idx_rooms_student ON rooms(student_id);

CREATE TABLE IF NOT EXISTS notifications (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	title VARCHAR(128) NOT NULL,
	text VARCHAR(255) NOT NULL,
	type VARCHAR(32) NOT NULL,
	data VARCHAR(64) NOT NULL DEFAULT '',
	is_read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_user_created
	ON notifications(user_id, created_at DESC);
`

const migration003Down = `
DROP TABLE IF EXISTS notifications;
DROP TABLE IF EXISTS rooms;
`

// Migration 004: bills and the token ledger.
const migration004Up = `
CREATE TABLE IF NOT EXISTS bills (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	lesson_id UUID NOT NULL REFERENCES lessons(id) ON DELETE CASCADE,
	amount INTEGER NOT NULL CHECK (amount > 0),
	is_paid BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	paid_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_bills_user ON bills(user_id);

CREATE TABLE IF NOT EXISTS account_operations (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	type VARCHAR(32) NOT NULL,
	amount INTEGER NOT NULL CHECK (amount > 0),
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_operations_user ON account_operations(user_id);
`

const migration004Down = `
DROP TABLE IF EXISTS account_operations;
DROP TABLE IF EXISTS bills;
`

// Migration 005: comments, comment reports and direct messages.
const migration005Up = `
CREATE TABLE IF NOT EXISTS comments (
	id UUID PRIMARY KEY,
	author_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	teacher_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	text VARCHAR(255) NOT NULL,
	rate SMALLINT NOT NULL CHECK (rate BETWEEN 1 AND 5),
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_comments_teacher ON comments(teacher_id);

CREATE TABLE IF NOT EXISTS reported_comments (
	id UUID PRIMARY KEY,
	author_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	comment_id UUID NOT NULL REFERENCES comments(id) ON DELETE CASCADE,
	text VARCHAR(255) NOT NULL,
	is_pending BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id UUID PRIMARY KEY,
	sender_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	receiver_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	title VARCHAR(64) NOT NULL,
	text VARCHAR(1024) NOT NULL,
	is_read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_receiver_created
	ON messages(receiver_id, created_at DESC);
`

const migration005Down = `
DROP TABLE IF EXISTS messages;
DROP TABLE IF EXISTS reported_comments;
DROP TABLE IF EXISTS comments;
`
