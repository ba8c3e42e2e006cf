package scope

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/redopsync/scopefilter/internal/severity"
)

// SnapshotSchema is the table layout LoadSQLite expects. Snapshot databases are
// produced by the project export job; this package only reads them.
const SnapshotSchema = `
CREATE TABLE IF NOT EXISTS project (
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS hosts (
	id       INTEGER PRIMARY KEY,
	ip       TEXT NOT NULL,
	dns_name TEXT,
	status   TEXT,
	subnet   TEXT,
	whois    TEXT
);
CREATE TABLE IF NOT EXISTS ports (
	host_id         INTEGER NOT NULL REFERENCES hosts(id),
	number          INTEGER NOT NULL,
	protocol        TEXT NOT NULL,
	state           TEXT,
	service_name    TEXT,
	service_version TEXT
);
CREATE TABLE IF NOT EXISTS evidence (
	host_id  INTEGER REFERENCES hosts(id),
	caption  TEXT,
	filename TEXT NOT NULL,
	mime     TEXT,
	source   TEXT
);
CREATE TABLE IF NOT EXISTS vulnerabilities (
	host_id         INTEGER NOT NULL REFERENCES hosts(id),
	title           TEXT,
	manual_severity TEXT,
	cvss_score      REAL,
	status          TEXT
);`

// LoadSQLite reads a project snapshot database in read-only mode.
func LoadSQLite(path string) (*Project, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer func() { _ = db.Close() }()

	p := &Project{}
	if err := db.QueryRow(`SELECT name FROM project LIMIT 1`).Scan(&p.Name); err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("read project: %w", err)
	}

	index, err := loadHosts(db, p)
	if err != nil {
		return nil, err
	}
	if err := loadPorts(db, p, index); err != nil {
		return nil, err
	}
	if err := loadEvidence(db, p, index); err != nil {
		return nil, err
	}
	if err := loadVulnerabilities(db, p, index); err != nil {
		return nil, err
	}
	return p, nil
}

// loadHosts fills p.Hosts and returns a map from row id to slice index.
func loadHosts(db *sql.DB, p *Project) (map[int64]int, error) {
	rows, err := db.Query(`SELECT id, ip, dns_name, status, subnet, whois FROM hosts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query hosts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	index := make(map[int64]int)
	for rows.Next() {
		var (
			id                            int64
			h                             Host
			dns, status, subnet, whoisRaw sql.NullString
		)
		if err := rows.Scan(&id, &h.IP, &dns, &status, &subnet, &whoisRaw); err != nil {
			return nil, fmt.Errorf("scan host: %w", err)
		}
		h.DNSName, h.Status, h.Subnet = dns.String, status.String, subnet.String
		if whoisRaw.Valid && whoisRaw.String != "" {
			// A malformed side-map is treated as absent, matching how resolvers treat non-objects.
			var w Whois
			if json.Unmarshal([]byte(whoisRaw.String), &w) == nil {
				h.Whois = w
			}
		}
		index[id] = len(p.Hosts)
		p.Hosts = append(p.Hosts, h)
	}
	return index, rows.Err()
}

func loadPorts(db *sql.DB, p *Project, index map[int64]int) error {
	rows, err := db.Query(`SELECT host_id, number, protocol, state, service_name, service_version FROM ports ORDER BY host_id, number`)
	if err != nil {
		return fmt.Errorf("query ports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			hostID                         int64
			pt                             Port
			state, service, serviceVersion sql.NullString
		)
		if err := rows.Scan(&hostID, &pt.Number, &pt.Protocol, &state, &service, &serviceVersion); err != nil {
			return fmt.Errorf("scan port: %w", err)
		}
		pt.State, pt.ServiceName, pt.ServiceVersion = state.String, service.String, serviceVersion.String
		i, ok := index[hostID]
		if !ok {
			return fmt.Errorf("port %d references unknown host %d", pt.Number, hostID)
		}
		p.Hosts[i].Ports = append(p.Hosts[i].Ports, pt)
	}
	return rows.Err()
}

func loadEvidence(db *sql.DB, p *Project, index map[int64]int) error {
	rows, err := db.Query(`SELECT host_id, caption, filename, mime, source FROM evidence ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("query evidence: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			hostID                sql.NullInt64
			ev                    Evidence
			caption, mime, source sql.NullString
		)
		if err := rows.Scan(&hostID, &caption, &ev.Filename, &mime, &source); err != nil {
			return fmt.Errorf("scan evidence: %w", err)
		}
		ev.Caption, ev.MIME, ev.Source = caption.String, mime.String, source.String
		if !hostID.Valid {
			p.Evidence = append(p.Evidence, ev)
			continue
		}
		i, ok := index[hostID.Int64]
		if !ok {
			return fmt.Errorf("evidence %s references unknown host %d", ev.Filename, hostID.Int64)
		}
		p.Hosts[i].Evidence = append(p.Hosts[i].Evidence, ev)
	}
	return rows.Err()
}

func loadVulnerabilities(db *sql.DB, p *Project, index map[int64]int) error {
	rows, err := db.Query(`SELECT host_id, title, manual_severity, cvss_score, status FROM vulnerabilities ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("query vulnerabilities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			hostID                int64
			v                     VulnerabilityInstance
			title, manual, status sql.NullString
			cvss                  sql.NullFloat64
		)
		if err := rows.Scan(&hostID, &title, &manual, &cvss, &status); err != nil {
			return fmt.Errorf("scan vulnerability: %w", err)
		}
		v.Title, v.Status = title.String, status.String
		if manual.Valid {
			if lvl, ok := severity.ParseLevel(manual.String); ok {
				v.ManualSeverity = lvl
			}
		}
		if cvss.Valid {
			score := cvss.Float64
			v.CVSSScore = &score
		}
		i, ok := index[hostID]
		if !ok {
			return fmt.Errorf("vulnerability %q references unknown host %d", v.Title, hostID)
		}
		p.Hosts[i].Vulnerabilities = append(p.Hosts[i].Vulnerabilities, v)
	}
	return rows.Err()
}
