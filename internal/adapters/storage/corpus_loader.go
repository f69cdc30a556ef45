package storage

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
	apperrors "github.com/banjirlab/relief-assistant/pkg/errors"
)

// Parquet row shapes follow the column names of the shipped corpora.
type englishPromptRow struct {
	Query  string `parquet:"input_fromuser"`
	Answer string `parquet:"answer_queries"`
}

type malayPromptRow struct {
	Query  string `parquet:"Input_penerima"`
	Answer string `parquet:"pengesahan_khabarangin"`
}

// CorpusPaths names the corpus inputs loaded at startup. Empty fields are
// skipped.
type CorpusPaths struct {
	EnglishParquet string
	MalayParquet   string
	CSV            string
	ProcessedDir   string
}

// LoadCorpus loads every configured corpus source. Each source is
// independent: a missing or unreadable file logs a warning and contributes
// nothing, so a partial corpus still serves queries.
func LoadCorpus(paths CorpusPaths) []entities.Document {
	var docs []entities.Document

	if paths.EnglishParquet != "" {
		loaded, err := LoadParquetCorpus(paths.EnglishParquet, "en")
		if err != nil {
			log.Printf("Warning: failed to load English corpus %s: %v", paths.EnglishParquet, err)
		}
		docs = append(docs, loaded...)
	}
	if paths.MalayParquet != "" {
		loaded, err := LoadParquetCorpus(paths.MalayParquet, "ms")
		if err != nil {
			log.Printf("Warning: failed to load Malay corpus %s: %v", paths.MalayParquet, err)
		}
		docs = append(docs, loaded...)
	}
	if paths.CSV != "" {
		loaded, err := LoadCSVCorpus(paths.CSV)
		if err != nil {
			log.Printf("Warning: failed to load CSV corpus %s: %v", paths.CSV, err)
		}
		docs = append(docs, loaded...)
	}
	if paths.ProcessedDir != "" {
		loaded, err := LoadChunkCorpus(paths.ProcessedDir)
		if err != nil {
			log.Printf("Warning: failed to load processed chunks from %s: %v", paths.ProcessedDir, err)
		}
		docs = append(docs, loaded...)
	}

	log.Printf("Corpus loaded: %d documents", len(docs))
	return docs
}

// LoadParquetCorpus reads a question/answer Parquet corpus. language selects
// the column mapping: "ms" for the Malay corpus, anything else English.
func LoadParquetCorpus(path, language string) ([]entities.Document, error) {
	source := filepath.Base(path)

	if language == "ms" {
		rows, err := parquet.ReadFile[malayPromptRow](path)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to read parquet corpus", err)
		}
		docs := make([]entities.Document, 0, len(rows))
		for i, row := range rows {
			if doc, ok := corpusDocument(source, language, i, row.Query, row.Answer); ok {
				docs = append(docs, doc)
			}
		}
		return docs, nil
	}

	rows, err := parquet.ReadFile[englishPromptRow](path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read parquet corpus", err)
	}
	docs := make([]entities.Document, 0, len(rows))
	for i, row := range rows {
		if doc, ok := corpusDocument(source, language, i, row.Query, row.Answer); ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// LoadCSVCorpus reads a corpus CSV with header query,answer,source,language.
// Column order is taken from the header, so extra columns are tolerated.
func LoadCSVCorpus(path string) ([]entities.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open CSV corpus", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read CSV header", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	queryCol, ok := cols["query"]
	if !ok {
		return nil, apperrors.NewValidationError("CSV corpus is missing a query column")
	}
	answerCol, ok := cols["answer"]
	if !ok {
		return nil, apperrors.NewValidationError("CSV corpus is missing an answer column")
	}

	sourceCol, hasSource := cols["source"]
	languageCol, hasLanguage := cols["language"]
	defaultSource := filepath.Base(path)

	var docs []entities.Document
	for i := 0; ; i++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("Warning: skipping malformed CSV row %d in %s: %v", i+2, path, err)
			continue
		}

		field := func(col int, fallback string) string {
			if col >= 0 && col < len(record) {
				if v := strings.TrimSpace(record[col]); v != "" {
					return v
				}
			}
			return fallback
		}
		source := defaultSource
		if hasSource {
			source = field(sourceCol, defaultSource)
		}
		language := ""
		if hasLanguage {
			language = field(languageCol, "")
		}

		if doc, ok := corpusDocument(source, language, i, field(queryCol, ""), field(answerCol, "")); ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// LoadChunkCorpus reads every processed JSONL chunk file under dir. Chunks
// carry no language tag, so they serve requests in any language.
func LoadChunkCorpus(dir string) ([]entities.Document, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return nil, apperrors.NewStorageError("failed to scan processed directory", err)
	}

	var docs []entities.Document
	for _, file := range files {
		loaded, err := loadChunkFile(file)
		if err != nil {
			log.Printf("Warning: failed to load chunk file %s: %v", file, err)
			continue
		}
		docs = append(docs, loaded...)
	}
	return docs, nil
}

func loadChunkFile(path string) ([]entities.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var docs []entities.Document
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(strings.TrimSpace(scanner.Text())) == 0 {
			continue
		}
		var chunk entities.Chunk
		if err := json.Unmarshal(scanner.Bytes(), &chunk); err != nil {
			log.Printf("Warning: skipping malformed chunk at %s:%d: %v", path, line, err)
			continue
		}
		if chunk.Text == "" {
			continue
		}
		id := chunk.ID
		if id == "" {
			id = fmt.Sprintf("%s-%d", filepath.Base(path), line)
		}
		source := chunk.Source
		if source == "" {
			source = filepath.Base(path)
		}
		docs = append(docs, entities.Document{
			ID:     id,
			Query:  chunk.Text,
			Text:   chunk.Text,
			Source: source,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func corpusDocument(source, language string, index int, query, answer string) (entities.Document, bool) {
	query = strings.TrimSpace(query)
	answer = strings.TrimSpace(answer)
	if query == "" || answer == "" {
		return entities.Document{}, false
	}
	return entities.Document{
		ID:       fmt.Sprintf("%s-%d", source, index),
		Query:    query,
		Text:     answer,
		Source:   source,
		Language: language,
	}, true
}
