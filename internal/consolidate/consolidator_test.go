package consolidate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/substantialcattle5/ghanima/internal/config"
	"github.com/substantialcattle5/ghanima/internal/fingerprint"
	"github.com/substantialcattle5/ghanima/internal/index"
	"github.com/substantialcattle5/ghanima/internal/policy"
	"github.com/substantialcattle5/ghanima/testutil"
)

type testEnv struct {
	cfg   *config.Config
	index *index.Index
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default(filepath.Join(root, "wechat"), filepath.Join(root, "storage"))
	cfg.Settings.MinFileSize = 0
	cfg.Settings.TargetFolders = []string{"Image", "Video"}

	if err := os.MkdirAll(cfg.Paths.Source, 0o755); err != nil {
		t.Fatalf("create source root: %v", err)
	}

	ix, err := index.Open(cfg.IndexPath())
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { ix.Close() })

	return &testEnv{cfg: cfg, index: ix}
}

func (e *testEnv) run(t *testing.T) *RunResult {
	t.Helper()
	scan := &policy.ScanPolicy{
		LastRun:      e.cfg.LastRunTime(),
		MinFileSize:  e.cfg.MinFileSizeBytes(),
		SkipPatterns: e.cfg.Settings.SkipPatterns,
	}

	c := New(e.cfg, e.index, scan, nil)
	result, err := c.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return result
}

func listStorageObjects(t *testing.T, storageRoot string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(storageRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() != "file_hashes.db" &&
			filepath.Ext(d.Name()) != ".db-wal" && filepath.Ext(d.Name()) != ".db-shm" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk storage: %v", err)
	}
	return files
}

func TestRunReplacesSourceWithLink(t *testing.T) {
	env := newTestEnv(t)
	imageDir := testutil.CreateUserCache(t, env.cfg.Paths.Source, "wxid_a", "Image")
	src := testutil.CreateTestFile(t, imageDir, "IMG_0001.jpg", "cat photo bytes")
	wantDigest := fingerprint.Bytes([]byte("cat photo bytes"))

	result := env.run(t)

	if result.FilesProcessed != 1 {
		t.Fatalf("Expected 1 file processed, got %d", result.FilesProcessed)
	}

	info, err := os.Lstat(src)
	if err != nil {
		t.Fatalf("Lstat source: %v", err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Fatal("Expected source to be replaced with a symlink")
	}

	target, err := os.Readlink(src)
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	if !index.UnderRoot(target, filepath.Join(env.cfg.Paths.Storage, "Image")) {
		t.Errorf("Expected link target under Image storage category, got %s", target)
	}

	// Content equivalence: the link target holds exactly the original bytes.
	gotDigest, err := fingerprint.File(src)
	if err != nil {
		t.Fatalf("digest through link: %v", err)
	}
	if gotDigest != wantDigest {
		t.Errorf("Expected digest %s through link, got %s", wantDigest, gotDigest)
	}
}

func TestRunDeduplicatesIdenticalContent(t *testing.T) {
	env := newTestEnv(t)
	dirA := testutil.CreateUserCache(t, env.cfg.Paths.Source, "wxid_a", "Image")
	dirB := testutil.CreateUserCache(t, env.cfg.Paths.Source, "wxid_b", "Image")

	srcA := testutil.CreateTestFile(t, dirA, "IMG_0001.jpg", "same bytes")
	srcB := testutil.CreateTestFile(t, dirB, "IMG_0001 (2).jpg", "same bytes")

	result := env.run(t)

	if result.FilesProcessed != 2 {
		t.Fatalf("Expected 2 files processed, got %d", result.FilesProcessed)
	}

	objects := listStorageObjects(t, env.cfg.Paths.Storage)
	if len(objects) != 1 {
		t.Fatalf("Expected exactly 1 storage object for identical content, got %v", objects)
	}

	targetA, err := os.Readlink(srcA)
	if err != nil {
		t.Fatalf("Readlink A: %v", err)
	}
	targetB, err := os.Readlink(srcB)
	if err != nil {
		t.Fatalf("Readlink B: %v", err)
	}
	if targetA != targetB {
		t.Errorf("Expected both duplicates to point at one object, got %s and %s", targetA, targetB)
	}
	if result.BytesReclaimed != int64(len("same bytes")) {
		t.Errorf("Expected %d bytes reclaimed for the second copy, got %d",
			len("same bytes"), result.BytesReclaimed)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	imageDir := testutil.CreateUserCache(t, env.cfg.Paths.Source, "wxid_a", "Image")
	testutil.CreateTestFile(t, imageDir, "IMG_0001.jpg", "one")
	testutil.CreateTestFile(t, imageDir, "IMG_0002.jpg", "two")

	first := env.run(t)
	if first.FilesProcessed != 2 {
		t.Fatalf("Expected 2 files processed on first run, got %d", first.FilesProcessed)
	}
	objectsAfterFirst := listStorageObjects(t, env.cfg.Paths.Storage)

	second := env.run(t)
	if second.FilesProcessed != 0 {
		t.Errorf("Expected 0 files processed on second run, got %d", second.FilesProcessed)
	}
	if second.Errors != 0 {
		t.Errorf("Expected no errors on second run, got %d", second.Errors)
	}

	objectsAfterSecond := listStorageObjects(t, env.cfg.Paths.Storage)
	if len(objectsAfterSecond) != len(objectsAfterFirst) {
		t.Errorf("Expected no additional storage objects, had %d now %d",
			len(objectsAfterFirst), len(objectsAfterSecond))
	}
}

func TestRunPreserveMode(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Settings.PreserveOriginals = true

	videoDir := testutil.CreateUserCache(t, env.cfg.Paths.Source, "wxid_a", "Video")
	src := testutil.CreateTestFile(t, videoDir, "clip.mp4", "video bytes")

	result := env.run(t)
	if result.FilesProcessed != 1 {
		t.Fatalf("Expected 1 file processed, got %d", result.FilesProcessed)
	}

	info, err := os.Lstat(src)
	if err != nil {
		t.Fatalf("Lstat source: %v", err)
	}
	if !info.Mode().IsRegular() {
		t.Fatal("Expected original to remain a regular file in preserve mode")
	}
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read original: %v", err)
	}
	if string(data) != "video bytes" {
		t.Errorf("Expected original content unchanged, got %q", data)
	}

	objects := listStorageObjects(t, env.cfg.Paths.Storage)
	if len(objects) != 1 {
		t.Fatalf("Expected 1 storage copy, got %v", objects)
	}
	copied, err := os.ReadFile(objects[0])
	if err != nil {
		t.Fatalf("read storage copy: %v", err)
	}
	if string(copied) != "video bytes" {
		t.Errorf("Expected storage copy content 'video bytes', got %q", copied)
	}
}

func TestRunSkipsSmallAndPatternedFiles(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Settings.MinFileSize = 1 // 1 MB
	env.cfg.Settings.SkipPatterns = []string{"Thumb"}

	imageDir := testutil.CreateUserCache(t, env.cfg.Paths.Source, "wxid_a", "Image")
	testutil.CreateTestFile(t, imageDir, "small.jpg", "tiny")
	testutil.CreateTestFile(t, imageDir, "Thumbnail_big.jpg", string(make([]byte, 2*1024*1024)))

	result := env.run(t)

	if result.FilesProcessed != 0 {
		t.Errorf("Expected 0 files processed, got %d", result.FilesProcessed)
	}
	if result.FilesSkipped != 2 {
		t.Errorf("Expected 2 files skipped, got %d", result.FilesSkipped)
	}
	if objects := listStorageObjects(t, env.cfg.Paths.Storage); len(objects) != 0 {
		t.Errorf("Expected no storage objects, got %v", objects)
	}
}

func TestRunSkipsUnchangedUserDirectories(t *testing.T) {
	env := newTestEnv(t)
	imageDir := testutil.CreateUserCache(t, env.cfg.Paths.Source, "wxid_a", "Image")
	testutil.CreateTestFile(t, imageDir, "IMG_0001.jpg", "photo")

	// Both the user directory and its category subdirectory predate the
	// recorded run.
	old := time.Now().Add(-2 * time.Hour)
	testutil.Backdate(t, imageDir, old)
	testutil.Backdate(t, filepath.Join(env.cfg.Paths.Source, "wxid_a"), old)
	env.cfg.SetLastRun(time.Now().Add(-1 * time.Hour))

	result := env.run(t)

	if result.FilesProcessed != 0 {
		t.Errorf("Expected unchanged directory to be skipped, processed %d", result.FilesProcessed)
	}
	if objects := listStorageObjects(t, env.cfg.Paths.Storage); len(objects) != 0 {
		t.Errorf("Expected no storage objects, got %v", objects)
	}
}

func TestRunKeepsCategoriesSeparate(t *testing.T) {
	env := newTestEnv(t)
	imageDir := testutil.CreateUserCache(t, env.cfg.Paths.Source, "wxid_a", "Image")
	videoDir := testutil.CreateUserCache(t, env.cfg.Paths.Source, "wxid_a", "Video")

	// Identical bytes in two categories stay two storage objects.
	testutil.CreateTestFile(t, imageDir, "blob.bin", "shared bytes")
	testutil.CreateTestFile(t, videoDir, "blob.bin", "shared bytes")

	result := env.run(t)
	if result.FilesProcessed != 2 {
		t.Fatalf("Expected 2 files processed, got %d", result.FilesProcessed)
	}

	objects := listStorageObjects(t, env.cfg.Paths.Storage)
	if len(objects) != 2 {
		t.Fatalf("Expected one storage object per category, got %v", objects)
	}
}

func TestRunRecordsSourceAndStorageRows(t *testing.T) {
	env := newTestEnv(t)
	imageDir := testutil.CreateUserCache(t, env.cfg.Paths.Source, "wxid_a", "Image")
	src := testutil.CreateTestFile(t, imageDir, "IMG_0001.jpg", "indexed bytes")
	digest := fingerprint.Bytes([]byte("indexed bytes"))

	env.run(t)

	storagePath, found, err := env.index.LookupStorageCopy(digest,
		filepath.Join(env.cfg.Paths.Storage, "Image"))
	if err != nil {
		t.Fatalf("LookupStorageCopy: %v", err)
	}
	if !found {
		t.Fatal("Expected a storage row for the new object")
	}
	if filepath.Base(storagePath) != "IMG_0001_"+digest[:5]+".jpg" {
		t.Errorf("Unexpected resolved storage name: %s", storagePath)
	}

	stats, err := env.index.CollectStats(env.cfg.Paths.Storage)
	if err != nil {
		t.Fatalf("CollectStats: %v", err)
	}
	if stats.StorageObjects != 1 || stats.LinkedSources != 1 {
		t.Errorf("Expected 1 storage row and 1 source row, got %+v", stats)
	}

	if info, err := os.Lstat(src); err != nil || info.Mode()&os.ModeSymlink == 0 {
		t.Error("Expected the recorded source path to be a symlink")
	}
}

func TestRunSkipsExistingSymlinks(t *testing.T) {
	env := newTestEnv(t)
	imageDir := testutil.CreateUserCache(t, env.cfg.Paths.Source, "wxid_a", "Image")
	real := testutil.CreateTestFile(t, imageDir, "real.jpg", "real bytes")

	linked := filepath.Join(imageDir, "alias.jpg")
	if err := os.Symlink(real, linked); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	result := env.run(t)

	// Only the regular file is processed; the symlink is never followed.
	if result.FilesProcessed != 1 {
		t.Errorf("Expected 1 file processed, got %d", result.FilesProcessed)
	}
	if objects := listStorageObjects(t, env.cfg.Paths.Storage); len(objects) != 1 {
		t.Errorf("Expected a single storage object, got %v", objects)
	}
}

func TestRunContinuesAfterUnreadableFile(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	env := newTestEnv(t)
	imageDir := testutil.CreateUserCache(t, env.cfg.Paths.Source, "wxid_a", "Image")
	blocked := testutil.CreateTestFile(t, imageDir, "blocked.jpg", "no access")
	testutil.CreateTestFile(t, imageDir, "readable.jpg", "fine")

	if err := os.Chmod(blocked, 0o000); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(blocked, 0o644) })

	result := env.run(t)

	if result.Errors != 1 {
		t.Errorf("Expected 1 per-file error, got %d", result.Errors)
	}
	if result.FilesProcessed != 1 {
		t.Errorf("Expected the readable file to be processed, got %d", result.FilesProcessed)
	}
}
