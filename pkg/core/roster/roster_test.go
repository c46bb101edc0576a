package roster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avoronova/qc-taskbot/pkg/db"
)

type fakeRosterStore struct {
	users   []db.User
	admins  []db.Admin
	patches []db.User
	dump    []db.User
}

func (f *fakeRosterStore) ReconcileUsers(ctx context.Context, desired []db.User) error {
	f.users = desired
	return nil
}

func (f *fakeRosterStore) ReconcileAdmins(ctx context.Context, desired []db.Admin) error {
	f.admins = desired
	return nil
}

func (f *fakeRosterStore) PatchSkills(ctx context.Context, updates []db.User) error {
	f.patches = updates
	return nil
}

func (f *fakeRosterStore) DumpUsers(ctx context.Context) ([]db.User, error) {
	return f.dump, nil
}

func TestReconcileUsers_DropsInvalidRows(t *testing.T) {
	store := &fakeRosterStore{}
	rows := [][]string{
		{"alice", "100", "chat,email"},
		{"", "101", "chat"},        // empty login
		{"bob", "not-an-id", "chat"}, // bad id
		{"carol", "102", ""},       // empty skill
		{"dave", "103"},            // short row
		{"erin", "104", "phone"},
	}

	err := ReconcileUsers(context.Background(), store, zap.NewNop(), rows)
	require.NoError(t, err)

	require.Len(t, store.users, 2)
	assert.Equal(t, db.User{Login: "alice", ID: 100, Skill: "chat,email"}, store.users[0])
	assert.Equal(t, db.User{Login: "erin", ID: 104, Skill: "phone"}, store.users[1])
}

func TestReconcileAdmins_DropsInvalidRows(t *testing.T) {
	store := &fakeRosterStore{}
	rows := [][]string{
		{"root", "1"},
		{"", "2"},
		{"ops", "three"},
		{"lead", "4"},
	}

	err := ReconcileAdmins(context.Background(), store, zap.NewNop(), rows)
	require.NoError(t, err)

	require.Len(t, store.admins, 2)
	assert.Equal(t, db.Admin{Login: "root", ID: 1}, store.admins[0])
	assert.Equal(t, db.Admin{Login: "lead", ID: 4}, store.admins[1])
}

func TestPatchSkills_PassesValidUpdates(t *testing.T) {
	store := &fakeRosterStore{}
	rows := [][]string{
		{"alice", "100", "chat"},
		{"bogus", "x", "chat"},
	}

	err := PatchSkills(context.Background(), store, zap.NewNop(), rows)
	require.NoError(t, err)

	require.Len(t, store.patches, 1)
	assert.Equal(t, "alice", store.patches[0].Login)
}

func TestDumpUsersCSV(t *testing.T) {
	store := &fakeRosterStore{dump: []db.User{
		{Login: "alice", ID: 100, Skill: "chat,email", Num: 1},
		{Login: "bob", ID: 200, Skill: "phone", Num: 0},
	}}

	out, err := DumpUsersCSV(context.Background(), store)
	require.NoError(t, err)

	expected := "login,id,skill,num\n" +
		"alice,100,\"chat,email\",1\n" +
		"bob,200,phone,0\n"
	assert.Equal(t, expected, string(out))
}
