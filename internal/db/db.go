package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

// Connect returns a MySQL connection pool using env vars.
func Connect() (*sql.DB, error) {
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASS")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	name := os.Getenv("DB_NAME")
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "3306"
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4,utf8", user, pass, host, port, name)
	pool, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	// Mesmo limite da pool original (connectionLimit: 10)
	pool.SetMaxOpenConns(10)
	pool.SetMaxIdleConns(5)
	return pool, nil
}

// EnsureSchema creates required tables if not exist.
func EnsureSchema(db *sql.DB) error {
	if skip := strings.TrimSpace(os.Getenv("DB_SKIP_SCHEMA")); strings.EqualFold(skip, "true") || skip == "1" {
		log.Printf("EnsureSchema: skipped (DB_SKIP_SCHEMA=%q)", skip)
		return nil
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS usuarios (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			nome VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			senha_hash VARCHAR(255) NOT NULL,
			reset_token VARCHAR(64) NULL,
			reset_token_expira TIMESTAMP NULL,
			criado_em TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`); err != nil {
		return err
	}

	// faz_exercicio: booleano. meta_perda_peso: magnitude em kg a perder (>= 0).
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS registros_saude (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			usuario_id BIGINT NOT NULL UNIQUE,
			peso DOUBLE NOT NULL,
			altura DOUBLE NOT NULL,
			gordura_corporal DOUBLE NOT NULL DEFAULT 0,
			faz_exercicio TINYINT(1) NOT NULL DEFAULT 0,
			meta_perda_peso DOUBLE NOT NULL DEFAULT 0,
			atualizado_em TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			FOREIGN KEY (usuario_id) REFERENCES usuarios(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`); err != nil {
		return err
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS historico_metricas (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			usuario_id BIGINT NOT NULL,
			tipo_metrica VARCHAR(20) NOT NULL,
			valor DOUBLE NOT NULL,
			registrado_em TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (usuario_id) REFERENCES usuarios(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`); err != nil {
		return err
	}

	if _, err := db.Exec(`
		CREATE INDEX idx_historico_usuario_data ON historico_metricas(usuario_id, registrado_em);
	`); err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") {
			// index already exists, nothing to do
		} else if strings.Contains(errMsg, "permission denied") {
			log.Printf("EnsureSchema: unable to create historico_metricas index (permission denied): %v", err)
		} else {
			return err
		}
	}

	return nil
}
