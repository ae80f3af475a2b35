package accservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-service/internal/domain"
	"account-service/internal/xerrors"
)

const (
	testBucket = "account-pictures"
	testUUID   = "11111111-2222-3333-4444-555555555555"
)

type fakeStore struct {
	accounts map[string]*domain.Account

	failUpdatePic bool
	updateCalls   int
	picUpdates    int
}

func newFakeStore(accs ...*domain.Account) *fakeStore {
	s := &fakeStore{accounts: map[string]*domain.Account{}}
	for _, a := range accs {
		s.accounts[a.UUID] = a
	}
	return s
}

func (s *fakeStore) GetByUUID(_ context.Context, uuid string) (*domain.Account, error) {
	acc, ok := s.accounts[uuid]
	if !ok {
		return nil, xerrors.ErrUserNotFound
	}
	cp := *acc
	return &cp, nil
}

func (s *fakeStore) Upsert(_ context.Context, acc *domain.Account) (*domain.Account, error) {
	existing, ok := s.accounts[acc.UUID]
	if ok {
		existing.Email = acc.Email
		existing.Name = acc.Name
		existing.Tarif = acc.Tarif
		existing.IsMember = acc.IsMember
		existing.IsBan = acc.IsBan
	} else {
		cp := *acc
		s.accounts[acc.UUID] = &cp
		existing = &cp
	}
	out := *existing
	return &out, nil
}

func (s *fakeStore) UpdateFields(_ context.Context, uuid string, patch domain.FieldPatch) (*domain.UpdatedFields, error) {
	acc, ok := s.accounts[uuid]
	if !ok {
		return nil, xerrors.ErrUserNotFound
	}
	s.updateCalls++

	out := &domain.UpdatedFields{}
	if patch.Name.Present {
		acc.Name = patch.Name.Value
		out.Name = &acc.Name
	}
	if patch.Bio.Present {
		acc.Bio = patch.Bio.Ptr()
		out.Bio = acc.Bio
	}
	if patch.Gender.Present {
		acc.Gender = patch.Gender.Ptr()
		out.Gender = acc.Gender
	}
	if patch.Specialization.Present {
		acc.Specialization = patch.Specialization.Ptr()
		out.Specialization = acc.Specialization
	}
	return out, nil
}

func (s *fakeStore) UpdatePicURL(_ context.Context, uuid, picURL string) error {
	if s.failUpdatePic {
		return errors.New("db down")
	}
	acc, ok := s.accounts[uuid]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	s.picUpdates++
	acc.PicURL = &picURL
	return nil
}

func (s *fakeStore) ClearPicURL(_ context.Context, uuid string) (string, error) {
	acc, ok := s.accounts[uuid]
	if !ok {
		return "", xerrors.ErrUserNotFound
	}
	old := ""
	if acc.PicURL != nil {
		old = *acc.PicURL
	}
	acc.PicURL = nil
	return old, nil
}

type fakeBlobs struct {
	objects map[string][]byte

	failUpload bool
	failURL    bool
	failRemove bool

	uploads int
	removes []string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}}
}

func (b *fakeBlobs) Upload(_ context.Context, name string, data []byte, _ string) error {
	if b.failUpload {
		return errors.New("storage down")
	}
	if _, exists := b.objects[name]; exists {
		return errors.New("object already exists")
	}
	b.uploads++
	b.objects[name] = data
	return nil
}

func (b *fakeBlobs) GetPublicURL(_ context.Context, name string) (string, error) {
	if b.failURL {
		return "", errors.New("no url")
	}
	return fmt.Sprintf("https://blob.test/object/public/%s/%s", testBucket, name), nil
}

func (b *fakeBlobs) Remove(_ context.Context, names []string) error {
	if b.failRemove {
		return errors.New("remove failed")
	}
	for _, n := range names {
		delete(b.objects, n)
		b.removes = append(b.removes, n)
	}
	return nil
}

func newTestService(store *fakeStore, blobs *fakeBlobs) *AccountService {
	svc := NewAccountService(store, blobs, testBucket)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc
}

func testAccount() *domain.Account {
	return &domain.Account{
		UUID:     testUUID,
		Email:    "jean@example.com",
		Name:     "Jean",
		Tarif:    1,
		IsMember: false,
		IsBan:    false,
	}
}

func TestCreateAccountUpsertIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, newFakeBlobs())
	ident := domain.Identity{UserID: testUUID, Email: "jean@example.com"}

	first, err := svc.CreateAccount(context.Background(), ident, "Jean")
	require.NoError(t, err)
	assert.Equal(t, "Jean", first.Name)
	assert.Equal(t, 1, first.Tarif)

	second, err := svc.CreateAccount(context.Background(), ident, "Jean-Michel")
	require.NoError(t, err)

	assert.Len(t, store.accounts, 1)
	assert.Equal(t, "Jean-Michel", second.Name)
	assert.Equal(t, "Jean-Michel", store.accounts[testUUID].Name)
}

func TestCreateAccountRejectsBadName(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeBlobs())

	_, err := svc.CreateAccount(context.Background(), domain.Identity{UserID: testUUID}, "x")
	require.Error(t, err)
	assert.True(t, xerrors.IsValidation(err))
}

func TestUpdateFieldsUnknownUserWritesNothing(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, newFakeBlobs())

	_, err := svc.UpdateFields(context.Background(), testUUID, domain.FieldPatch{
		Name: domain.Some("Jean"),
	})
	require.ErrorIs(t, err, xerrors.ErrUserNotFound)
	assert.Zero(t, store.updateCalls)
}

func TestUpdateFieldsValidationAbortsBeforeWrite(t *testing.T) {
	store := newFakeStore(testAccount())
	svc := newTestService(store, newFakeBlobs())

	cases := []domain.FieldPatch{
		{Name: domain.Some("a")},
		{Name: domain.Some(strings.Repeat("a", 101))},
		{Bio: domain.Some(strings.Repeat("b", 1001))},
		{Gender: domain.Some("autre")},
		{Specialization: domain.Some("pas_un_metier")},
	}
	for _, patch := range cases {
		_, err := svc.UpdateFields(context.Background(), testUUID, patch)
		require.Error(t, err)
		assert.True(t, xerrors.IsValidation(err))
	}
	assert.Zero(t, store.updateCalls)
	assert.Equal(t, "Jean", store.accounts[testUUID].Name)
}

func TestUpdateFieldsReturnsOnlyUpdatedFields(t *testing.T) {
	store := newFakeStore(testAccount())
	svc := newTestService(store, newFakeBlobs())

	out, err := svc.UpdateFields(context.Background(), testUUID, domain.FieldPatch{
		Name: domain.Some("  Jean Dupont  "),
	})
	require.NoError(t, err)
	require.NotNil(t, out.Name)
	assert.Equal(t, "Jean Dupont", *out.Name)
	assert.Nil(t, out.Bio)
	assert.Nil(t, out.Gender)
	assert.Nil(t, out.Specialization)
}

func TestUpdateFieldsClearsWithExplicitNull(t *testing.T) {
	acc := testAccount()
	bio := "old bio"
	acc.Bio = &bio
	store := newFakeStore(acc)
	svc := newTestService(store, newFakeBlobs())

	out, err := svc.UpdateFields(context.Background(), testUUID, domain.FieldPatch{
		Bio: domain.Null[string](),
	})
	require.NoError(t, err)
	assert.Nil(t, out.Bio)
	assert.Nil(t, store.accounts[testUUID].Bio)
}

func TestUploadPictureHappyPathReplacesOldObject(t *testing.T) {
	oldURL := fmt.Sprintf("https://blob.test/object/public/%s/%s_1600000000000.png", testBucket, testUUID)
	acc := testAccount()
	acc.PicURL = &oldURL

	store := newFakeStore(acc)
	blobs := newFakeBlobs()
	blobs.objects[fmt.Sprintf("%s_1600000000000.png", testUUID)] = []byte("old")
	svc := newTestService(store, blobs)

	data := make([]byte, 1536*1024) // 1.5 MiB
	url, name, err := svc.UploadPicture(context.Background(), testUUID, data, "avatar.png", "image/png")
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("%s_1700000000000.png", testUUID), name)
	assert.Contains(t, url, name)

	// row points at the new object
	require.NotNil(t, store.accounts[testUUID].PicURL)
	assert.Equal(t, url, *store.accounts[testUUID].PicURL)

	// old object gone, new object present
	assert.NotContains(t, blobs.objects, fmt.Sprintf("%s_1600000000000.png", testUUID))
	assert.Contains(t, blobs.objects, name)
}

func TestUploadPictureNameUsesLastDotSegment(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"avatar.png", fmt.Sprintf("%s_1700000000000.png", testUUID)},
		{"me.profile.jpg", fmt.Sprintf("%s_1700000000000.jpg", testUUID)},
		{"avatar", fmt.Sprintf("%s_1700000000000.avatar", testUUID)},
	}

	for _, tc := range cases {
		t.Run(tc.filename, func(t *testing.T) {
			store := newFakeStore(testAccount())
			blobs := newFakeBlobs()
			svc := newTestService(store, blobs)

			_, name, err := svc.UploadPicture(context.Background(), testUUID, []byte("png"), tc.filename, "image/png")
			require.NoError(t, err)
			assert.Equal(t, tc.want, name)
		})
	}
}

func TestUploadPictureOversizeAbortsBeforeStorage(t *testing.T) {
	store := newFakeStore(testAccount())
	blobs := newFakeBlobs()
	svc := newTestService(store, blobs)

	data := make([]byte, 3*1024*1024)
	_, _, err := svc.UploadPicture(context.Background(), testUUID, data, "big.png", "image/png")
	require.Error(t, err)
	assert.True(t, xerrors.IsValidation(err))
	assert.Zero(t, blobs.uploads)
	assert.Zero(t, store.picUpdates)
	assert.Nil(t, store.accounts[testUUID].PicURL)
}

func TestUploadPictureBadTypeAbortsBeforeStorage(t *testing.T) {
	store := newFakeStore(testAccount())
	blobs := newFakeBlobs()
	svc := newTestService(store, blobs)

	_, _, err := svc.UploadPicture(context.Background(), testUUID, []byte("gif!"), "anim.gif", "image/gif")
	require.Error(t, err)
	assert.True(t, xerrors.IsValidation(err))
	assert.Zero(t, blobs.uploads)
}

func TestUploadPictureUnknownUser(t *testing.T) {
	blobs := newFakeBlobs()
	svc := newTestService(newFakeStore(), blobs)

	_, _, err := svc.UploadPicture(context.Background(), testUUID, []byte("png"), "a.png", "image/png")
	require.ErrorIs(t, err, xerrors.ErrUserNotFound)
	assert.Zero(t, blobs.uploads)
}

func TestUploadPictureCompensatesWhenRowUpdateFails(t *testing.T) {
	store := newFakeStore(testAccount())
	store.failUpdatePic = true
	blobs := newFakeBlobs()
	svc := newTestService(store, blobs)

	_, _, err := svc.UploadPicture(context.Background(), testUUID, []byte("png"), "a.png", "image/png")
	require.Error(t, err)
	assert.True(t, xerrors.IsDependency(err))

	// the fresh upload was rolled back and the row is unchanged
	assert.Empty(t, blobs.objects)
	assert.Nil(t, store.accounts[testUUID].PicURL)
}

func TestUploadPictureOldObjectDeleteFailureIsNotFatal(t *testing.T) {
	oldURL := fmt.Sprintf("https://blob.test/object/public/%s/%s_1600000000000.jpg", testBucket, testUUID)
	acc := testAccount()
	acc.PicURL = &oldURL

	store := newFakeStore(acc)
	blobs := newFakeBlobs()
	blobs.failRemove = true
	svc := newTestService(store, blobs)

	url, _, err := svc.UploadPicture(context.Background(), testUUID, []byte("png"), "a.png", "image/png")
	require.NoError(t, err)
	require.NotNil(t, store.accounts[testUUID].PicURL)
	assert.Equal(t, url, *store.accounts[testUUID].PicURL)
}

func TestUploadPictureURLFailureIsFatal(t *testing.T) {
	store := newFakeStore(testAccount())
	blobs := newFakeBlobs()
	blobs.failURL = true
	svc := newTestService(store, blobs)

	_, _, err := svc.UploadPicture(context.Background(), testUUID, []byte("png"), "a.png", "image/png")
	require.Error(t, err)
	assert.True(t, xerrors.IsDependency(err))
	assert.Zero(t, store.picUpdates)
}

func TestDeletePictureClearsRowThenRemovesObject(t *testing.T) {
	name := fmt.Sprintf("%s_1600000000000.png", testUUID)
	oldURL := fmt.Sprintf("https://blob.test/object/public/%s/%s", testBucket, name)
	acc := testAccount()
	acc.PicURL = &oldURL

	store := newFakeStore(acc)
	blobs := newFakeBlobs()
	blobs.objects[name] = []byte("old")
	svc := newTestService(store, blobs)

	err := svc.DeletePicture(context.Background(), testUUID, "")
	require.NoError(t, err)
	assert.Nil(t, store.accounts[testUUID].PicURL)
	assert.NotContains(t, blobs.objects, name)
}

func TestDeletePictureNoPictureIsIdempotent(t *testing.T) {
	store := newFakeStore(testAccount())
	blobs := newFakeBlobs()
	svc := newTestService(store, blobs)

	err := svc.DeletePicture(context.Background(), testUUID, "")
	require.NoError(t, err)
	assert.Nil(t, store.accounts[testUUID].PicURL)
	assert.Empty(t, blobs.removes)
}

func TestDeletePictureStorageFailureStillSucceeds(t *testing.T) {
	name := fmt.Sprintf("%s_1600000000000.png", testUUID)
	oldURL := fmt.Sprintf("https://blob.test/object/public/%s/%s", testBucket, name)
	acc := testAccount()
	acc.PicURL = &oldURL

	store := newFakeStore(acc)
	blobs := newFakeBlobs()
	blobs.failRemove = true
	svc := newTestService(store, blobs)

	err := svc.DeletePicture(context.Background(), testUUID, "")
	require.NoError(t, err)
	assert.Nil(t, store.accounts[testUUID].PicURL)
}

func TestDeletePictureIgnoresForeignURLs(t *testing.T) {
	acc := testAccount()
	url := "https://elsewhere.example/avatars/pic.png"
	acc.PicURL = &url

	store := newFakeStore(acc)
	blobs := newFakeBlobs()
	svc := newTestService(store, blobs)

	err := svc.DeletePicture(context.Background(), testUUID, "")
	require.NoError(t, err)
	assert.Nil(t, store.accounts[testUUID].PicURL)
	assert.Empty(t, blobs.removes)
}

func TestDeletePictureUnknownUser(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeBlobs())
	err := svc.DeletePicture(context.Background(), testUUID, "")
	require.ErrorIs(t, err, xerrors.ErrUserNotFound)
}
