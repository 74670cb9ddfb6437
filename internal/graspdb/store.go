package graspdb

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound reports a lookup for an entry that does not exist.
var ErrNotFound = errors.New("graspdb: not found")

// Store provides persistence for grasp demonstrations and grasp models.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path, applies
// pending schema migrations and returns a Store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open grasp database: %w", err)
	}
	s := NewStore(db)
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an existing database handle. The caller is responsible for
// the schema being current.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for admin surfaces.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddDemonstration inserts a demonstration and assigns its ID and created
// timestamp.
func (s *Store) AddDemonstration(d *GraspDemonstration) error {
	if d.Created.IsZero() {
		d.Created = time.Now().UTC()
	}
	res, err := s.db.Exec(`
		INSERT INTO grasp_demonstrations (object_name, frame_id, pos_x, pos_y, pos_z, rot_x, rot_y, rot_z, rot_w, eef_frame_id, point_cloud, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ObjectName, d.GraspPose.RobotFixedFrameID,
		d.GraspPose.Position.X, d.GraspPose.Position.Y, d.GraspPose.Position.Z,
		d.GraspPose.Orientation.X, d.GraspPose.Orientation.Y, d.GraspPose.Orientation.Z, d.GraspPose.Orientation.W,
		d.EefFrameID, d.PointCloud.Bytes(), d.Created.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert demonstration: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert demonstration id: %w", err)
	}
	d.ID = uint32(id)
	return nil
}

// GetDemonstration retrieves a demonstration by ID.
func (s *Store) GetDemonstration(id uint32) (*GraspDemonstration, error) {
	row := s.db.QueryRow(`
		SELECT id, object_name, frame_id, pos_x, pos_y, pos_z, rot_x, rot_y, rot_z, rot_w, eef_frame_id, point_cloud, created
		FROM grasp_demonstrations WHERE id = ?`, id)
	return scanDemonstration(row)
}

// ListDemonstrations returns all demonstrations for an object name in
// insertion order.
func (s *Store) ListDemonstrations(objectName string) ([]GraspDemonstration, error) {
	rows, err := s.db.Query(`
		SELECT id, object_name, frame_id, pos_x, pos_y, pos_z, rot_x, rot_y, rot_z, rot_w, eef_frame_id, point_cloud, created
		FROM grasp_demonstrations WHERE object_name = ? ORDER BY id`, objectName)
	if err != nil {
		return nil, fmt.Errorf("list demonstrations: %w", err)
	}
	defer rows.Close()

	var out []GraspDemonstration
	for rows.Next() {
		d, err := scanDemonstration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDemonstration(row rowScanner) (*GraspDemonstration, error) {
	var d GraspDemonstration
	var cloud []byte
	var createdNs int64
	err := row.Scan(&d.ID, &d.ObjectName, &d.GraspPose.RobotFixedFrameID,
		&d.GraspPose.Position.X, &d.GraspPose.Position.Y, &d.GraspPose.Position.Z,
		&d.GraspPose.Orientation.X, &d.GraspPose.Orientation.Y, &d.GraspPose.Orientation.Z, &d.GraspPose.Orientation.W,
		&d.EefFrameID, &cloud, &createdNs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan demonstration: %w", err)
	}
	d.PointCloud = NewCloudBuffer(cloud)
	d.Created = time.Unix(0, createdNs).UTC()
	return &d, nil
}

// AddGraspModel inserts a model with its grasps in one transaction,
// assigning IDs and the created timestamp.
func (s *Store) AddGraspModel(m *GraspModel) error {
	if m.Created.IsZero() {
		m.Created = time.Now().UTC()
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin add model: %w", err)
	}
	defer tx.Rollback()

	var cloud []byte
	if m.PointCloud != nil {
		cloud = EncodeCloud(m.PointCloud).Bytes()
	}
	res, err := tx.Exec(`
		INSERT INTO grasp_models (object_name, point_cloud, created) VALUES (?, ?, ?)`,
		m.ObjectName, cloud, m.Created.UnixNano())
	if err != nil {
		return fmt.Errorf("insert model: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert model id: %w", err)
	}
	m.ID = uint32(id)

	for i := range m.Grasps {
		g := &m.Grasps[i]
		g.GraspModelID = m.ID
		if g.Created.IsZero() {
			g.Created = m.Created
		}
		res, err := tx.Exec(`
			INSERT INTO grasps (grasp_model_id, frame_id, pos_x, pos_y, pos_z, rot_x, rot_y, rot_z, rot_w, eef_frame_id, successes, attempts, created)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			g.GraspModelID, g.GraspPose.RobotFixedFrameID,
			g.GraspPose.Position.X, g.GraspPose.Position.Y, g.GraspPose.Position.Z,
			g.GraspPose.Orientation.X, g.GraspPose.Orientation.Y, g.GraspPose.Orientation.Z, g.GraspPose.Orientation.W,
			g.EefFrameID, g.Successes, g.Attempts, g.Created.UnixNano())
		if err != nil {
			return fmt.Errorf("insert grasp: %w", err)
		}
		gid, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert grasp id: %w", err)
		}
		g.ID = uint32(gid)
	}
	return tx.Commit()
}

// GetGraspModel retrieves a model and its grasps by ID.
func (s *Store) GetGraspModel(id uint32) (*GraspModel, error) {
	row := s.db.QueryRow(`SELECT id, object_name, point_cloud, created FROM grasp_models WHERE id = ?`, id)
	m, err := scanModel(row)
	if err != nil {
		return nil, err
	}
	m.Grasps, err = s.modelGrasps(m.ID)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetGraspModels returns all models for an object name, or every model when
// objectName is empty. This is the candidate list a recognition pass runs
// against.
func (s *Store) GetGraspModels(objectName string) ([]GraspModel, error) {
	query := `SELECT id, object_name, point_cloud, created FROM grasp_models ORDER BY id`
	args := []any{}
	if objectName != "" {
		query = `SELECT id, object_name, point_cloud, created FROM grasp_models WHERE object_name = ? ORDER BY id`
		args = append(args, objectName)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer rows.Close()

	var out []GraspModel
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Grasps, err = s.modelGrasps(out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func scanModel(row rowScanner) (*GraspModel, error) {
	var m GraspModel
	var cloud []byte
	var createdNs int64
	err := row.Scan(&m.ID, &m.ObjectName, &cloud, &createdNs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan model: %w", err)
	}
	if len(cloud) > 0 {
		c, err := DecodeCloud(NewCloudBuffer(cloud))
		if err != nil {
			return nil, fmt.Errorf("model %d: %w", m.ID, err)
		}
		m.PointCloud = c
	}
	m.Created = time.Unix(0, createdNs).UTC()
	return &m, nil
}

func (s *Store) modelGrasps(modelID uint32) ([]Grasp, error) {
	rows, err := s.db.Query(`
		SELECT id, grasp_model_id, frame_id, pos_x, pos_y, pos_z, rot_x, rot_y, rot_z, rot_w, eef_frame_id, successes, attempts, created
		FROM grasps WHERE grasp_model_id = ? ORDER BY id`, modelID)
	if err != nil {
		return nil, fmt.Errorf("list grasps: %w", err)
	}
	defer rows.Close()

	var out []Grasp
	for rows.Next() {
		var g Grasp
		var createdNs int64
		err := rows.Scan(&g.ID, &g.GraspModelID, &g.GraspPose.RobotFixedFrameID,
			&g.GraspPose.Position.X, &g.GraspPose.Position.Y, &g.GraspPose.Position.Z,
			&g.GraspPose.Orientation.X, &g.GraspPose.Orientation.Y, &g.GraspPose.Orientation.Z, &g.GraspPose.Orientation.W,
			&g.EefFrameID, &g.Successes, &g.Attempts, &createdNs)
		if err != nil {
			return nil, fmt.Errorf("scan grasp: %w", err)
		}
		g.Created = time.Unix(0, createdNs).UTC()
		out = append(out, g)
	}
	return out, rows.Err()
}

// AddGraspAttempt records one execution attempt against a grasp, bumping the
// success count when the attempt succeeded.
func (s *Store) AddGraspAttempt(graspID uint32, success bool) error {
	inc := 0
	if success {
		inc = 1
	}
	res, err := s.db.Exec(`UPDATE grasps SET attempts = attempts + 1, successes = successes + ? WHERE id = ?`, inc, graspID)
	if err != nil {
		return fmt.Errorf("record grasp attempt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record grasp attempt: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGraspModel removes a model and its grasps.
func (s *Store) DeleteGraspModel(id uint32) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete model: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM grasps WHERE grasp_model_id = ?`, id); err != nil {
		return fmt.Errorf("delete grasps: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM grasp_models WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete model: %w", err)
	}
	return tx.Commit()
}
