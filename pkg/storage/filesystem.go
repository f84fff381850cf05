// Package storage persists workspace artifacts in the .burndown/ directory.
package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"gopkg.in/yaml.v3"

	"github.com/niksavis/burndown-chart/pkg/domain/metrics"
	"github.com/niksavis/burndown-chart/pkg/domain/project"
)

const BurndownDir = ".burndown"
const SeriesFile = "series.json"
const ScheduleFile = "schedule.yaml"
const SettingsFile = "settings.yaml"
const SnapshotsFile = "snapshots.jsonl"

// FilesystemRepository implements project.WorkspaceRepository over a
// .burndown directory at the workspace root. Reads and writes retry briefly
// to ride out editor/watcher races on the same files.
type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// ResolvePath ensures the path is within the .burndown directory and prevents traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Join(r.root, BurndownDir)
	fullPath := filepath.Join(baseDir, filename)
	cleanPath := filepath.Clean(fullPath)

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	path := filepath.Join(r.root, BurndownDir)
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create .burndown directory: %w", err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, BurndownDir))
	return err == nil
}

func (r *FilesystemRepository) SaveSeries(series []metrics.WeeklyRecord) error {
	data, err := json.MarshalIndent(series, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}
	return r.writeFile(SeriesFile, data)
}

func (r *FilesystemRepository) LoadSeries() ([]metrics.WeeklyRecord, error) {
	retryer := retry.New[[]metrics.WeeklyRecord](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) ([]metrics.WeeklyRecord, error) {
		path, err := r.ResolvePath(SeriesFile)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read series file: %w", err)
		}

		var series []metrics.WeeklyRecord
		if err := json.Unmarshal(data, &series); err != nil {
			return nil, fmt.Errorf("failed to unmarshal series: %w", err)
		}

		return series, nil
	})
}

func (r *FilesystemRepository) SaveSchedule(schedule *project.Schedule) error {
	data, err := yaml.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("failed to marshal schedule: %w", err)
	}
	return r.writeFile(ScheduleFile, data)
}

func (r *FilesystemRepository) LoadSchedule() (*project.Schedule, error) {
	var schedule project.Schedule
	found, err := r.readYAML(ScheduleFile, &schedule)
	if err != nil || !found {
		return nil, err
	}
	return &schedule, nil
}

func (r *FilesystemRepository) SaveSettings(settings *project.Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return r.writeFile(SettingsFile, data)
}

func (r *FilesystemRepository) LoadSettings() (*project.Settings, error) {
	var settings project.Settings
	found, err := r.readYAML(SettingsFile, &settings)
	if err != nil || !found {
		return nil, err
	}
	return &settings, nil
}

// AppendSnapshot appends one computed snapshot to the jsonl history log.
func (r *FilesystemRepository) AppendSnapshot(snapshot *project.Snapshot) error {
	path, err := r.ResolvePath(SnapshotsFile)
	if err != nil {
		return err
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	retryer := retry.New[struct{}](r.retryConfig)
	_, err = retryer.Do(context.Background(), func(ctx context.Context) (struct{}, error) {
		// #nosec G304 -- Path is resolved and validated via ResolvePath
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to open snapshot log: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.Write(append(data, '\n')); err != nil {
			return struct{}{}, fmt.Errorf("failed to append snapshot: %w", err)
		}
		return struct{}{}, nil
	})
	return err
}

// LoadSnapshots reads the full snapshot history, oldest first.
func (r *FilesystemRepository) LoadSnapshots() ([]project.Snapshot, error) {
	path, err := r.ResolvePath(SnapshotsFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var snapshots []project.Snapshot
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var snapshot project.Snapshot
		if err := json.Unmarshal([]byte(line), &snapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot line: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot log: %w", err)
	}

	return snapshots, nil
}

// writeFile writes data into the .burndown directory with retries.
func (r *FilesystemRepository) writeFile(filename string, data []byte) error {
	path, err := r.ResolvePath(filename)
	if err != nil {
		return err
	}

	retryer := retry.New[struct{}](r.retryConfig)
	_, err = retryer.Do(context.Background(), func(ctx context.Context) (struct{}, error) {
		// G306: Use 0600 for files
		if err := os.WriteFile(path, data, 0600); err != nil {
			return struct{}{}, fmt.Errorf("failed to write %s: %w", filename, err)
		}
		return struct{}{}, nil
	})
	return err
}

// readYAML loads a YAML file from the workspace, reporting found=false when
// the file does not exist.
func (r *FilesystemRepository) readYAML(filename string, out any) (bool, error) {
	path, err := r.ResolvePath(filename)
	if err != nil {
		return false, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}
	return true, nil
}
