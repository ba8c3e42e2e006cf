package generate

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"

	"github.com/redopsync/scopefilter/internal/scope"
)

// WriteYAML writes p as a YAML dataset.
func WriteYAML(path string, p *scope.Project) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // G306: datasets are not secret
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteSQLite writes p as a snapshot database. An existing file is replaced.
func WriteSQLite(path string, p *scope.Project) (err error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if cerr := db.Close(); err == nil {
			err = cerr
		}
	}()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(scope.SnapshotSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO project (name) VALUES (?)`, p.Name); err != nil {
		return err
	}
	for i, h := range p.Hosts {
		id := int64(i + 1)
		if err := insertHost(tx, id, h); err != nil {
			return fmt.Errorf("insert host %s: %w", h.IP, err)
		}
	}
	for _, ev := range p.Evidence {
		if _, err := tx.Exec(`INSERT INTO evidence (host_id, caption, filename, mime, source) VALUES (NULL, ?, ?, ?, ?)`,
			ev.Caption, ev.Filename, ev.MIME, ev.Source); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertHost(tx *sql.Tx, id int64, h scope.Host) error {
	var whois any
	if len(h.Whois) > 0 {
		data, err := json.Marshal(h.Whois)
		if err != nil {
			return err
		}
		whois = string(data)
	}
	if _, err := tx.Exec(`INSERT INTO hosts (id, ip, dns_name, status, subnet, whois) VALUES (?, ?, ?, ?, ?, ?)`,
		id, h.IP, h.DNSName, h.Status, h.Subnet, whois); err != nil {
		return err
	}
	for _, port := range h.Ports {
		if _, err := tx.Exec(`INSERT INTO ports (host_id, number, protocol, state, service_name, service_version) VALUES (?, ?, ?, ?, ?, ?)`,
			id, port.Number, port.Protocol, port.State, port.ServiceName, port.ServiceVersion); err != nil {
			return err
		}
	}
	for _, ev := range h.Evidence {
		if _, err := tx.Exec(`INSERT INTO evidence (host_id, caption, filename, mime, source) VALUES (?, ?, ?, ?, ?)`,
			id, ev.Caption, ev.Filename, ev.MIME, ev.Source); err != nil {
			return err
		}
	}
	for _, v := range h.Vulnerabilities {
		var manual any
		if v.ManualSeverity.Valid() {
			manual = v.ManualSeverity.String()
		}
		if _, err := tx.Exec(`INSERT INTO vulnerabilities (host_id, title, manual_severity, cvss_score, status) VALUES (?, ?, ?, ?, ?)`,
			id, v.Title, manual, v.CVSSScore, v.Status); err != nil {
			return err
		}
	}
	return nil
}
