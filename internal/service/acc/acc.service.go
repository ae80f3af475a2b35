package accservice

import (
	"context"
	"fmt"
	"log"
	"path"
	"slices"
	"strings"
	"time"

	"account-service/internal/domain"
	"account-service/internal/storage"
	"account-service/internal/xerrors"
)

const (
	maxPictureBytes = 2 * 1024 * 1024
	defaultTarif    = 1
)

var allowedPictureTypes = []string{"image/jpeg", "image/jpg", "image/png"}

// AccountStore is the relational side of the account lifecycle.
type AccountStore interface {
	GetByUUID(ctx context.Context, uuid string) (*domain.Account, error)
	Upsert(ctx context.Context, acc *domain.Account) (*domain.Account, error)
	UpdateFields(ctx context.Context, uuid string, patch domain.FieldPatch) (*domain.UpdatedFields, error)
	UpdatePicURL(ctx context.Context, uuid, picURL string) error
	ClearPicURL(ctx context.Context, uuid string) (string, error)
}

// AccountService keeps the account row and its profile-picture object
// coherent across mutations. The row is the source of truth: orderings
// always prefer an orphaned object over a dangling pic_url.
type AccountService struct {
	store  AccountStore
	blobs  storage.BlobStore
	bucket string
	now    func() time.Time
}

func NewAccountService(store AccountStore, blobs storage.BlobStore, bucket string) *AccountService {
	return &AccountService{
		store:  store,
		blobs:  blobs,
		bucket: bucket,
		now:    time.Now,
	}
}

// CreateAccount upserts the account row keyed on the identity uuid. On
// conflict the supplied fields overwrite the existing ones; re-creation
// with the same identity updates rather than duplicates.
func (s *AccountService) CreateAccount(ctx context.Context, ident domain.Identity, name string) (*domain.Account, error) {
	normalized, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	acc, err := s.store.Upsert(ctx, &domain.Account{
		UUID:     ident.UserID,
		Email:    ident.Email,
		Name:     normalized,
		Tarif:    defaultTarif,
		IsMember: false,
		IsBan:    false,
	})
	if err != nil {
		return nil, xerrors.Dependency("upsert account", err)
	}
	return acc, nil
}

// UpdateFields validates and applies exactly the fields present in the
// patch in one atomic update. The result carries only the updated fields,
// never the full row.
func (s *AccountService) UpdateFields(ctx context.Context, uuid string, patch domain.FieldPatch) (*domain.UpdatedFields, error) {
	if _, err := s.store.GetByUUID(ctx, uuid); err != nil {
		return nil, err
	}

	validated := domain.FieldPatch{}

	if patch.Name.Present {
		name, err := normalizeName(patch.Name.Value)
		if err != nil {
			return nil, err
		}
		validated.Name = domain.Some(name)
	}
	if patch.Bio.Present {
		bio, err := normalizeBio(patch.Bio)
		if err != nil {
			return nil, err
		}
		if bio == nil {
			validated.Bio = domain.Null[string]()
		} else {
			validated.Bio = domain.Some(*bio)
		}
	}
	if patch.Gender.Present {
		gender, err := validateEnum(patch.Gender, domain.Genders, "gender")
		if err != nil {
			return nil, err
		}
		if gender == nil {
			validated.Gender = domain.Null[string]()
		} else {
			validated.Gender = domain.Some(*gender)
		}
	}
	if patch.Specialization.Present {
		spec, err := validateEnum(patch.Specialization, domain.Specializations, "specialization")
		if err != nil {
			return nil, err
		}
		if spec == nil {
			validated.Specialization = domain.Null[string]()
		} else {
			validated.Specialization = domain.Some(*spec)
		}
	}

	updated, err := s.store.UpdateFields(ctx, uuid, validated)
	if err != nil {
		return nil, xerrors.Dependency("update account fields", err)
	}
	return updated, nil
}

// UploadPicture stores a new profile picture and repoints the row at it.
// The old object is removed best-effort; a failed row update rolls back
// the fresh upload so no object is left without a referencing row.
func (s *AccountService) UploadPicture(ctx context.Context, uuid string, data []byte, filename, mimeType string) (url, objectName string, err error) {
	if !slices.Contains(allowedPictureTypes, mimeType) {
		return "", "", xerrors.Validation("Invalid file type. Only JPG and PNG are allowed.")
	}
	if len(data) > maxPictureBytes {
		return "", "", xerrors.Validation("File too large. Maximum 2MB allowed.")
	}

	acc, err := s.store.GetByUUID(ctx, uuid)
	if err != nil {
		return "", "", err
	}

	// Best-effort cleanup of the previous object before the new upload.
	if old := s.objectNameFromURL(acc.PicURL); old != "" {
		if err := s.blobs.Remove(ctx, []string{old}); err != nil {
			log.Printf("[WARN] could not delete old picture %s for uuid=%s: %v", old, uuid, err)
		}
	}

	// The suffix is the last dot segment of the filename, so an
	// extensionless upload still gets a dotted name.
	suffix := filename
	if i := strings.LastIndex(filename, "."); i >= 0 {
		suffix = filename[i+1:]
	}
	objectName = fmt.Sprintf("%s_%d.%s", uuid, s.now().UnixMilli(), suffix)

	if err := s.blobs.Upload(ctx, objectName, data, mimeType); err != nil {
		return "", "", xerrors.Dependency("upload picture", err)
	}

	url, err = s.blobs.GetPublicURL(ctx, objectName)
	if err != nil {
		return "", "", xerrors.Dependency("get picture url", err)
	}

	if err := s.store.UpdatePicURL(ctx, uuid, url); err != nil {
		// Roll back our own upload so the blob store holds no object
		// that no row references.
		if rmErr := s.blobs.Remove(ctx, []string{objectName}); rmErr != nil {
			log.Printf("[WARN] could not roll back picture %s for uuid=%s: %v", objectName, uuid, rmErr)
		}
		return "", "", xerrors.Dependency("update pic_url", err)
	}

	return url, objectName, nil
}

// DeletePicture clears the row's pic_url, then removes the underlying
// object best-effort. Clearing first keeps the row authoritative: a stale
// object is a recoverable leak, a dangling reference is not. Idempotent
// when no picture is set.
func (s *AccountService) DeletePicture(ctx context.Context, uuid, urlHint string) error {
	if _, err := s.store.GetByUUID(ctx, uuid); err != nil {
		return err
	}

	oldURL, err := s.store.ClearPicURL(ctx, uuid)
	if err != nil {
		return xerrors.Dependency("clear pic_url", err)
	}

	resolved := urlHint
	if resolved == "" {
		resolved = oldURL
	}

	if name := s.objectNameFromURL(&resolved); name != "" {
		if err := s.blobs.Remove(ctx, []string{name}); err != nil {
			log.Printf("[WARN] could not delete picture %s for uuid=%s: %v", name, uuid, err)
		}
	}
	return nil
}

// objectNameFromURL extracts the object name when the URL points into the
// picture bucket, empty otherwise.
func (s *AccountService) objectNameFromURL(url *string) string {
	if url == nil || *url == "" {
		return ""
	}
	if !strings.Contains(*url, s.bucket) {
		return ""
	}
	return path.Base(*url)
}
