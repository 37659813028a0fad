package filestore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	serrors "github.com/slinkshare/slink/internal/errors"
	"github.com/slinkshare/slink/internal/ledger"
	"github.com/slinkshare/slink/internal/linkhash"
	logger "github.com/slinkshare/slink/internal/logging"
	"github.com/slinkshare/slink/internal/privilege"
)

const stagingPattern = ".slink-staging-*"

// Ledger is the subset of the share ledger the store writes to.
type Ledger interface {
	InsertFile(ctx context.Context, f ledger.File) error
	GetFile(ctx context.Context, identifier string) (*ledger.File, error)
	FindByName(ctx context.Context, filename string) ([]ledger.File, error)
	ListFiles(ctx context.Context) ([]ledger.FileSummary, error)
	DeleteFile(ctx context.Context, identifier string) error
	UpsertShare(ctx context.Context, identifier, recipient, token string, at time.Time) error
	DeactivateShare(ctx context.Context, identifier, recipient string, at time.Time) (bool, error)
	DeactivateShares(ctx context.Context, identifier string, at time.Time) (int, error)
	Shares(ctx context.Context, identifier string) ([]ledger.Share, error)
	ActiveTokens(ctx context.Context) (map[string]string, error)
	Stats(ctx context.Context) (*ledger.Stats, error)
}

// Transitioner moves a tree between the operating and service principals.
type Transitioner interface {
	Lockdown(root string, modes privilege.Modes, service privilege.Principal) error
	Reclaim(root string) error
}

// Options are the store's tunables, normally taken from the config file.
type Options struct {
	BaseDir      string
	Secret       string
	HashLength   int
	ServiceUser  string
	ServiceGroup string

	// DirMode and FileMode default to privilege.DefaultModes.
	DirMode  os.FileMode
	FileMode os.FileMode
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIdentifierSupplier replaces random UUID generation.
func WithIdentifierSupplier(next func() (string, error)) Option {
	return func(s *Store) { s.nextID = next }
}

// WithTransitioner replaces the syscall-backed privilege transitioner.
func WithTransitioner(t Transitioner) Option {
	return func(s *Store) { s.transitioner = t }
}

// WithServicePrincipal skips name resolution of ServiceUser and ServiceGroup.
func WithServicePrincipal(p privilege.Principal) Option {
	return func(s *Store) { s.service = &p }
}

// WithLogger sets the logger used for progress and cleanup warnings.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Store manages StoreEntries and capability links under a base directory.
type Store struct {
	baseDir    string
	secret     string
	hashLength int
	modes      privilege.Modes
	service    *privilege.Principal

	ledger       Ledger
	transitioner Transitioner
	now          func() time.Time
	nextID       func() (string, error)
	log          logger.Logger
}

// FileIdentity describes a stored file.
type FileIdentity struct {
	Identifier string
	Filename   string
	DateAdded  time.Time
	// Digest is the hex BLAKE3-256 of the content.
	Digest string
	// Size is -1 when the stored file could not be inspected.
	Size int64
}

// Summary is a FileIdentity with its number of active shares.
type Summary struct {
	FileIdentity
	ActiveShares int
}

// New returns a Store for opts. The service principal is resolved here, so
// an unknown web user or group fails before any file is touched.
func New(opts Options, l Ledger, options ...Option) (*Store, error) {
	s := &Store{
		baseDir:      opts.BaseDir,
		secret:       opts.Secret,
		hashLength:   opts.HashLength,
		modes:        privilege.DefaultModes,
		ledger:       l,
		transitioner: privilege.New(),
		now:          time.Now,
		nextID:       newUUID,
	}
	for _, opt := range options {
		opt(s)
	}

	if s.baseDir == "" {
		return nil, fmt.Errorf("%w: base directory is empty", serrors.ErrConfiguration)
	}
	if s.hashLength == 0 {
		s.hashLength = linkhash.DefaultLength
	}
	if err := linkhash.ValidateLength(s.hashLength); err != nil {
		return nil, err
	}
	if s.secret == "" {
		return nil, fmt.Errorf("%w: hash secret is empty", serrors.ErrConfiguration)
	}
	if opts.DirMode != 0 {
		s.modes.Dir = opts.DirMode
	}
	if opts.FileMode != 0 {
		s.modes.File = opts.FileMode
	}

	if s.service == nil {
		p, err := privilege.ResolvePrincipal(opts.ServiceUser, opts.ServiceGroup)
		if err != nil {
			return nil, err
		}
		s.service = &p
	}
	return s, nil
}

func newUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// BaseDir returns the store's base directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// HashLength returns the number of hash bytes kept in a link token.
func (s *Store) HashLength() int {
	return s.hashLength
}

// Service returns the principal stored files are handed to.
func (s *Store) Service() privilege.Principal {
	return *s.service
}

// AddRequest names the content to store. Either Path or Reader is set.
type AddRequest struct {
	Path   string
	Reader io.Reader
	// Name overrides the base name of Path and is required with Reader.
	Name string
}

// Add copies the source into a new StoreEntry, hands it to the service
// principal and records it in the ledger.
func (s *Store) Add(ctx context.Context, req AddRequest) (*FileIdentity, error) {
	name := req.Name
	if name == "" && req.Path != "" {
		name = filepath.Base(req.Path)
	}
	filename, err := SanitizeFilename(name)
	if err != nil {
		return nil, err
	}

	src, closeSrc, err := openSource(req)
	if err != nil {
		return nil, err
	}
	defer closeSrc()

	staged, digest, size, err := s.stage(src)
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(staged) }()

	id, err := s.nextID()
	if err != nil {
		return nil, fmt.Errorf("generating identifier: %w: %w", serrors.ErrFilesystem, err)
	}
	if err := validateIdentifier(id); err != nil {
		return nil, err
	}

	entry := s.entryPath(id)
	if err := os.Mkdir(entry, 0o700); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("entry %s: %w", id, serrors.ErrDuplicateIdentifier)
		}
		return nil, fmt.Errorf("creating %s: %w: %w", entry, serrors.ErrFilesystem, err)
	}
	s.log.Debugf("Created entry directory %s", entry)

	if err := os.Rename(staged, filepath.Join(entry, filename)); err != nil {
		_ = os.Remove(entry)
		return nil, fmt.Errorf("moving %s into %s: %w: %w", filename, entry, serrors.ErrFilesystem, err)
	}

	if err := s.transitioner.Lockdown(entry, s.modes, *s.service); err != nil {
		s.discard(entry)
		return nil, err
	}
	s.log.Debugf("Handed %s to %s", entry, s.service)

	identity := &FileIdentity{
		Identifier: id,
		Filename:   filename,
		DateAdded:  s.now().UTC(),
		Digest:     digest,
		Size:       size,
	}
	err = s.ledger.InsertFile(ctx, ledger.File{
		Identifier: identity.Identifier,
		Filename:   identity.Filename,
		Digest:     identity.Digest,
		DateAdded:  identity.DateAdded,
	})
	if err != nil {
		s.discard(entry)
		return nil, err
	}

	s.log.Infof("Stored %s as %s", filename, id)
	return identity, nil
}

// sourceReader remembers read failures so they can be told apart from
// failures writing the staging file.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		s.err = err
	}
	return n, err
}

func openSource(req AddRequest) (io.Reader, func(), error) {
	if req.Reader != nil {
		if req.Name == "" {
			return nil, nil, fmt.Errorf("%w: a name is required when reading a stream", serrors.ErrInvalidFilename)
		}
		return req.Reader, func() {}, nil
	}

	f, err := os.Open(req.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w: %w", req.Path, serrors.ErrSourceUnreadable, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("inspecting %s: %w: %w", req.Path, serrors.ErrSourceUnreadable, err)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%s: %w: not a regular file", req.Path, serrors.ErrSourceUnreadable)
	}
	return f, func() { _ = f.Close() }, nil
}

// stage streams src into a private temporary file inside the base
// directory, so the final rename never crosses a filesystem.
func (s *Store) stage(src io.Reader) (string, string, int64, error) {
	tmp, err := os.CreateTemp(s.baseDir, stagingPattern)
	if err != nil {
		return "", "", 0, fmt.Errorf("creating staging file in %s: %w: %w", s.baseDir, serrors.ErrFilesystem, err)
	}
	path := tmp.Name()
	fail := func(err error) (string, string, int64, error) {
		_ = tmp.Close()
		_ = os.Remove(path)
		return "", "", 0, err
	}

	hasher := blake3.New()
	in := &sourceReader{r: src}
	size, err := io.Copy(io.MultiWriter(tmp, hasher), in)
	if err != nil {
		if in.err != nil {
			return fail(fmt.Errorf("reading source: %w: %w", serrors.ErrSourceUnreadable, in.err))
		}
		return fail(fmt.Errorf("writing %s: %w: %w", path, serrors.ErrFilesystem, err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing %s: %w: %w", path, serrors.ErrFilesystem, err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(path)
		return "", "", 0, fmt.Errorf("closing %s: %w: %w", path, serrors.ErrFilesystem, err)
	}

	return path, hex.EncodeToString(hasher.Sum(nil)), size, nil
}

// discard reclaims and deletes a half-created entry. Failures are logged
// because the caller is already returning the original error.
func (s *Store) discard(entry string) {
	if err := s.transitioner.Reclaim(entry); err != nil {
		s.log.Warnf("Could not reclaim %s: %v", entry, err)
	}
	if err := os.RemoveAll(entry); err != nil {
		s.log.Warnf("Could not remove %s: %v", entry, err)
	}
}

// RemoveOptions controls confirmation for Remove.
type RemoveOptions struct {
	// Confirmed skips the confirmation callback.
	Confirmed bool
	// Confirm is asked when Confirmed is false. A nil Confirm declines.
	Confirm func(FileIdentity) bool
}

// RemoveResult reports what Remove did.
type RemoveResult struct {
	Identity      FileIdentity
	Declined      bool
	LinksRemoved  int
	SharesRevoked int
}

// Remove deletes a StoreEntry together with every capability link that
// points at it, and marks its grants inactive.
func (s *Store) Remove(ctx context.Context, identifier string, opts RemoveOptions) (*RemoveResult, error) {
	if err := validateIdentifier(identifier); err != nil {
		return nil, err
	}
	entry := s.entryPath(identifier)
	if _, err := os.Lstat(entry); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", identifier, serrors.ErrNotFound)
		}
		return nil, fmt.Errorf("inspecting %s: %w: %w", entry, serrors.ErrFilesystem, err)
	}

	identity := FileIdentity{Identifier: identifier, Size: -1}
	f, err := s.ledger.GetFile(ctx, identifier)
	switch {
	case err == nil:
		identity = s.identity(*f)
	case errors.Is(err, serrors.ErrNotFound):
		s.log.Warnf("Entry %s has no ledger record", identifier)
	default:
		return nil, err
	}

	result := &RemoveResult{Identity: identity}
	if !opts.Confirmed && (opts.Confirm == nil || !opts.Confirm(identity)) {
		result.Declined = true
		return result, nil
	}

	n, err := s.sweep(identifier)
	if err != nil {
		return nil, err
	}
	result.LinksRemoved = n

	if err := s.transitioner.Reclaim(entry); err != nil {
		return nil, err
	}
	if err := os.RemoveAll(entry); err != nil {
		return nil, fmt.Errorf("removing %s: %w: %w", entry, serrors.ErrFilesystem, err)
	}
	s.log.Debugf("Removed entry directory %s", entry)

	revoked, err := s.ledger.DeactivateShares(ctx, identifier, s.now())
	if err != nil {
		return nil, err
	}
	result.SharesRevoked = revoked

	if err := s.ledger.DeleteFile(ctx, identifier); err != nil {
		return nil, err
	}

	s.log.Infof("Removed %s (%d links, %d active shares)", identifier, n, revoked)
	return result, nil
}

// Get returns the identity of a stored file.
func (s *Store) Get(ctx context.Context, identifier string) (*FileIdentity, error) {
	f, err := s.ledger.GetFile(ctx, identifier)
	if err != nil {
		return nil, err
	}
	identity := s.identity(*f)
	return &identity, nil
}

// List returns every stored file, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	files, err := s.ledger.ListFiles(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]Summary, 0, len(files))
	for _, f := range files {
		summaries = append(summaries, Summary{
			FileIdentity: s.identity(f.File),
			ActiveShares: f.ActiveShares,
		})
	}
	return summaries, nil
}

// Stats returns ledger statistics.
func (s *Store) Stats(ctx context.Context) (*ledger.Stats, error) {
	return s.ledger.Stats(ctx)
}

func (s *Store) identity(f ledger.File) FileIdentity {
	identity := FileIdentity{
		Identifier: f.Identifier,
		Filename:   f.Filename,
		DateAdded:  f.DateAdded,
		Digest:     f.Digest,
		Size:       -1,
	}
	if info, err := os.Stat(filepath.Join(s.entryPath(f.Identifier), f.Filename)); err == nil {
		identity.Size = info.Size()
	}
	return identity
}

func (s *Store) entryPath(identifier string) string {
	return filepath.Join(s.baseDir, identifier)
}

// validateIdentifier accepts canonical 36-character UUIDs only, which also
// keeps identifiers to a single path segment.
func validateIdentifier(identifier string) error {
	if !isIdentifier(identifier) {
		return fmt.Errorf("%q is not a file identifier: %w", identifier, serrors.ErrNotFound)
	}
	return nil
}

func isIdentifier(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
