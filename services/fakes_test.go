package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/courtpulse/badminton-system/models"
	"github.com/courtpulse/badminton-system/repositories"
	"github.com/courtpulse/badminton-system/storage"
)

// In-memory repository fakes. They ignore the SQLExecutor argument, so
// service paths that do not open a real transaction can run against
// them with a nil *sql.DB. Paths that do open one get testDB: a
// *sql.DB over a no-op driver whose transactions begin, commit and
// roll back without a database behind them.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDB() *sql.DB {
	return sql.OpenDB(nopConnector{})
}

type nopConnector struct{}

func (nopConnector) Connect(context.Context) (driver.Conn, error) {
	return nopConn{}, nil
}

func (nopConnector) Driver() driver.Driver { return nopDriver{} }

type nopDriver struct{}

func (nopDriver) Open(string) (driver.Conn, error) { return nopConn{}, nil }

type nopConn struct{}

func (nopConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("statements not supported")
}

func (nopConn) Close() error              { return nil }
func (nopConn) Begin() (driver.Tx, error) { return nopTx{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

type fakeUserRepo struct {
	nextID       int
	users        map[int]*models.User
	updatedStats map[int]models.UserStats
	createErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		nextID:       1,
		users:        make(map[int]*models.User),
		updatedStats: make(map[int]models.UserStats),
	}
}

func (f *fakeUserRepo) add(user models.User) *models.User {
	if user.ID == 0 {
		user.ID = f.nextID
	}
	if user.ID >= f.nextID {
		f.nextID = user.ID + 1
	}
	stored := user
	f.users[stored.ID] = &stored
	return &stored
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
		if existing.Nickname == user.Nickname {
			return repositories.ErrUserNicknameConflict
		}
	}
	user.ID = f.nextID
	f.nextID++
	stored := *user
	f.users[stored.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	stored, ok := f.users[user.ID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	for _, other := range f.users {
		if other.ID != user.ID && other.Nickname == user.Nickname {
			return repositories.ErrUserNicknameConflict
		}
	}
	copied := *user
	copied.PasswordHash = stored.PasswordHash
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) UpdateStats(ctx context.Context, exec repositories.SQLExecutor, userID int, stats models.UserStats) error {
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.Stats = stats
	f.updatedStats[userID] = stats
	return nil
}

func (f *fakeUserRepo) UpdateAvatarKey(ctx context.Context, userID int, key *string) error {
	user, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.AvatarKey = key
	return nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int, error) {
	return len(f.users), nil
}

type fakeMatchRepo struct {
	nextID        int
	matches       map[int]*models.Match
	confirmations map[int][]int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{
		nextID:        1,
		matches:       make(map[int]*models.Match),
		confirmations: make(map[int][]int),
	}
}

func (f *fakeMatchRepo) add(match models.Match) *models.Match {
	if match.ID == 0 {
		match.ID = f.nextID
	}
	if match.ID >= f.nextID {
		f.nextID = match.ID + 1
	}
	stored := match
	f.matches[stored.ID] = &stored
	return &stored
}

func (f *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	match.ID = f.nextID
	f.nextID++
	stored := *match
	f.matches[stored.ID] = &stored
	return nil
}

func (f *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *match
	return &copied, nil
}

func (f *fakeMatchRepo) ListByUser(ctx context.Context, userID int, kind *models.MatchKind) ([]models.Match, error) {
	var out []models.Match
	for _, match := range f.matches {
		if match.CreatedBy != userID {
			continue
		}
		if kind != nil && match.Kind != *kind {
			continue
		}
		out = append(out, *match)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayedAt.After(out[j].PlayedAt) })
	return out, nil
}

func (f *fakeMatchRepo) AddConfirmation(ctx context.Context, matchID, userID int) error {
	match, ok := f.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.ConfirmedBy = append(match.ConfirmedBy, int64(userID))
	f.confirmations[matchID] = append(f.confirmations[matchID], userID)
	return nil
}

func (f *fakeMatchRepo) AppendMedia(ctx context.Context, matchID int, photos, videos []string) error {
	match, ok := f.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.Media.Photos = append(match.Media.Photos, photos...)
	match.Media.Videos = append(match.Media.Videos, videos...)
	return nil
}

func (f *fakeMatchRepo) Delete(ctx context.Context, id int) error {
	if _, ok := f.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(f.matches, id)
	return nil
}

func (f *fakeMatchRepo) Count(ctx context.Context) (int, error) {
	return len(f.matches), nil
}

type fakeCircleRepo struct {
	nextID  int
	circles map[int]*models.Circle
}

func newFakeCircleRepo() *fakeCircleRepo {
	return &fakeCircleRepo{nextID: 1, circles: make(map[int]*models.Circle)}
}

func (f *fakeCircleRepo) add(circle models.Circle) *models.Circle {
	if circle.ID == 0 {
		circle.ID = f.nextID
	}
	if circle.ID >= f.nextID {
		f.nextID = circle.ID + 1
	}
	stored := circle
	f.circles[stored.ID] = &stored
	return &stored
}

func (f *fakeCircleRepo) Create(ctx context.Context, exec repositories.SQLExecutor, circle *models.Circle) error {
	for _, existing := range f.circles {
		if existing.Name == circle.Name {
			return repositories.ErrCircleNameConflict
		}
	}
	circle.ID = f.nextID
	f.nextID++
	stored := *circle
	f.circles[stored.ID] = &stored
	return nil
}

func (f *fakeCircleRepo) GetByID(ctx context.Context, id int) (*models.Circle, error) {
	circle, ok := f.circles[id]
	if !ok {
		return nil, repositories.ErrCircleNotFound
	}
	copied := *circle
	return &copied, nil
}

func (f *fakeCircleRepo) List(ctx context.Context) ([]models.Circle, error) {
	out := make([]models.Circle, 0, len(f.circles))
	for _, circle := range f.circles {
		out = append(out, *circle)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCircleRepo) Search(ctx context.Context, query string) ([]models.Circle, error) {
	all, _ := f.List(ctx)
	var out []models.Circle
	for _, circle := range all {
		if strings.Contains(strings.ToLower(circle.Name), strings.ToLower(query)) {
			out = append(out, circle)
		}
	}
	return out, nil
}

func (f *fakeCircleRepo) Update(ctx context.Context, circle *models.Circle) error {
	if _, ok := f.circles[circle.ID]; !ok {
		return repositories.ErrCircleNotFound
	}
	copied := *circle
	f.circles[circle.ID] = &copied
	return nil
}

func (f *fakeCircleRepo) AdjustCounters(ctx context.Context, exec repositories.SQLExecutor, id int, memberDelta, activeDelta int) error {
	circle, ok := f.circles[id]
	if !ok {
		return repositories.ErrCircleNotFound
	}
	circle.MemberCount += memberDelta
	if circle.MemberCount < 0 {
		circle.MemberCount = 0
	}
	circle.Stats.ActiveMembers += activeDelta
	if circle.Stats.ActiveMembers < 0 {
		circle.Stats.ActiveMembers = 0
	}
	return nil
}

func (f *fakeCircleRepo) Delete(ctx context.Context, id int) error {
	if _, ok := f.circles[id]; !ok {
		return repositories.ErrCircleNotFound
	}
	delete(f.circles, id)
	return nil
}

func (f *fakeCircleRepo) Count(ctx context.Context) (int, error) {
	return len(f.circles), nil
}

type membershipKey struct {
	circleID int
	userID   int
}

type fakeMembershipRepo struct {
	memberships map[membershipKey]*models.CircleMembership
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{memberships: make(map[membershipKey]*models.CircleMembership)}
}

func (f *fakeMembershipRepo) add(m models.CircleMembership) {
	stored := m
	f.memberships[membershipKey{m.CircleID, m.UserID}] = &stored
}

func (f *fakeMembershipRepo) Create(ctx context.Context, exec repositories.SQLExecutor, membership *models.CircleMembership) error {
	key := membershipKey{membership.CircleID, membership.UserID}
	if _, ok := f.memberships[key]; ok {
		return repositories.ErrMembershipConflict
	}
	stored := *membership
	f.memberships[key] = &stored
	return nil
}

func (f *fakeMembershipRepo) Get(ctx context.Context, circleID, userID int) (*models.CircleMembership, error) {
	membership, ok := f.memberships[membershipKey{circleID, userID}]
	if !ok {
		return nil, repositories.ErrMembershipNotFound
	}
	copied := *membership
	return &copied, nil
}

func (f *fakeMembershipRepo) ListByCircle(ctx context.Context, circleID int) ([]models.CircleMembership, error) {
	var out []models.CircleMembership
	for key, membership := range f.memberships {
		if key.circleID == circleID {
			out = append(out, *membership)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (f *fakeMembershipRepo) ListByUser(ctx context.Context, userID int) ([]models.CircleMembership, error) {
	var out []models.CircleMembership
	for key, membership := range f.memberships {
		if key.userID == userID {
			out = append(out, *membership)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CircleID < out[j].CircleID })
	return out, nil
}

func (f *fakeMembershipRepo) UpdateRole(ctx context.Context, exec repositories.SQLExecutor, circleID, userID int, role models.MembershipRole) error {
	membership, ok := f.memberships[membershipKey{circleID, userID}]
	if !ok {
		return repositories.ErrMembershipNotFound
	}
	membership.Role = role
	return nil
}

func (f *fakeMembershipRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, circleID, userID int, status models.MembershipStatus) error {
	membership, ok := f.memberships[membershipKey{circleID, userID}]
	if !ok {
		return repositories.ErrMembershipNotFound
	}
	membership.Status = status
	return nil
}

func (f *fakeMembershipRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, circleID, userID int) error {
	key := membershipKey{circleID, userID}
	if _, ok := f.memberships[key]; !ok {
		return repositories.ErrMembershipNotFound
	}
	delete(f.memberships, key)
	return nil
}

type achievementKey struct {
	userID        int
	achievementID string
}

type fakeAchievementRepo struct {
	rows map[achievementKey]models.UserAchievement
}

func newFakeAchievementRepo() *fakeAchievementRepo {
	return &fakeAchievementRepo{rows: make(map[achievementKey]models.UserAchievement)}
}

func (f *fakeAchievementRepo) ListByUser(ctx context.Context, userID int) ([]models.UserAchievement, error) {
	var out []models.UserAchievement
	for key, row := range f.rows {
		if key.userID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeAchievementRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, state *models.UserAchievement) error {
	key := achievementKey{state.UserID, state.AchievementID}
	if existing, ok := f.rows[key]; ok {
		merged := *state
		merged.Unlocked = existing.Unlocked || state.Unlocked
		if existing.UnlockedAt != nil {
			merged.UnlockedAt = existing.UnlockedAt
		}
		f.rows[key] = merged
		return nil
	}
	f.rows[key] = *state
	return nil
}

func (f *fakeAchievementRepo) CountUnlocked(ctx context.Context) (int, error) {
	count := 0
	for _, row := range f.rows {
		if row.Unlocked {
			count++
		}
	}
	return count, nil
}

type settingKey struct {
	userID int
	name   string
}

type fakeSettingsRepo struct {
	values map[settingKey][]byte
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{values: make(map[settingKey][]byte)}
}

func (f *fakeSettingsRepo) Get(ctx context.Context, userID int, name string, out interface{}) error {
	raw, ok := f.values[settingKey{userID, name}]
	if !ok {
		return repositories.ErrSettingNotFound
	}
	return json.Unmarshal(raw, out)
}

func (f *fakeSettingsRepo) Put(ctx context.Context, exec repositories.SQLExecutor, userID int, name string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.values[settingKey{userID, name}] = raw
	return nil
}

type fakeInviteRepo struct {
	nextID  int
	invites map[string]*models.CircleInvite
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{nextID: 1, invites: make(map[string]*models.CircleInvite)}
}

func (f *fakeInviteRepo) Create(ctx context.Context, invite *models.CircleInvite) error {
	if _, ok := f.invites[invite.Token]; ok {
		return repositories.ErrInviteTokenConflict
	}
	invite.ID = f.nextID
	f.nextID++
	stored := *invite
	f.invites[stored.Token] = &stored
	return nil
}

func (f *fakeInviteRepo) GetByToken(ctx context.Context, token string) (*models.CircleInvite, error) {
	invite, ok := f.invites[token]
	if !ok {
		return nil, repositories.ErrInviteNotFound
	}
	copied := *invite
	return &copied, nil
}

func (f *fakeInviteRepo) Delete(ctx context.Context, id int) error {
	for token, invite := range f.invites {
		if invite.ID == id {
			delete(f.invites, token)
			return nil
		}
	}
	return repositories.ErrInviteNotFound
}

func (f *fakeInviteRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

type notifierCall struct {
	kind    string
	userID  int
	title   string
	message string
}

type fakeNotifier struct {
	calls []notifierCall
}

func (f *fakeNotifier) Success(userID int, title, message string) {
	f.calls = append(f.calls, notifierCall{"success", userID, title, message})
}

func (f *fakeNotifier) Error(userID int, title, message string) {
	f.calls = append(f.calls, notifierCall{"error", userID, title, message})
}

func (f *fakeNotifier) Warning(userID int, title, message string) {
	f.calls = append(f.calls, notifierCall{"warning", userID, title, message})
}

func (f *fakeNotifier) Info(userID int, title, message string) {
	f.calls = append(f.calls, notifierCall{"info", userID, title, message})
}

func (f *fakeNotifier) AchievementUnlocked(userID int, achievement models.Achievement) {
	f.calls = append(f.calls, notifierCall{"achievement", userID, achievement.ID, achievement.Title})
}

func (f *fakeNotifier) unlockedIDs() []string {
	var out []string
	for _, call := range f.calls {
		if call.kind == "achievement" {
			out = append(out, call.title)
		}
	}
	return out
}

type fakeUploader struct {
	uploaded []string
	deleted  []string
	baseURL  string
}

func (f *fakeUploader) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	f.uploaded = append(f.uploaded, key)
	return &storage.UploadResult{Key: key, Location: f.GetPublicURL(key)}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	if f.baseURL == "" {
		return "https://cdn.test/" + key
	}
	return f.baseURL + "/" + key
}

// fakeAchievementSvc records the event hooks other services fire.
type fakeAchievementSvc struct {
	evaluated []int
	granted   []string
	shared    []int
	goals     []int
	grantErr  error
}

func (f *fakeAchievementSvc) ListForUser(ctx context.Context, userID int) ([]models.AchievementStatus, error) {
	return nil, nil
}

func (f *fakeAchievementSvc) EvaluateForUser(ctx context.Context, exec repositories.SQLExecutor, userID int) ([]models.Achievement, error) {
	f.evaluated = append(f.evaluated, userID)
	return nil, nil
}

func (f *fakeAchievementSvc) Grant(ctx context.Context, userID int, achievementID string) error {
	if f.grantErr != nil {
		return f.grantErr
	}
	f.granted = append(f.granted, fmt.Sprintf("%d:%s", userID, achievementID))
	return nil
}

func (f *fakeAchievementSvc) RecordResultShared(ctx context.Context, userID int) error {
	f.shared = append(f.shared, userID)
	return nil
}

func (f *fakeAchievementSvc) RecordGoalSet(ctx context.Context, userID int) error {
	f.goals = append(f.goals, userID)
	return nil
}
