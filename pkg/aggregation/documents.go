package aggregation

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
)

const maxDocumentSize = 16 * 1024 * 1024

// LoadDocuments reads a mongoexport style dump, either a JSON array or one extended JSON document per line
func LoadDocuments(reader io.Reader) ([]bson.M, error) {
	buffered := bufio.NewReader(reader)

	for {
		next, err := buffered.Peek(1)
		if err == io.EOF {
			return []bson.M{}, nil
		}
		if err != nil {
			return nil, err
		}

		if next[0] == ' ' || next[0] == '\t' || next[0] == '\n' || next[0] == '\r' {
			buffered.ReadByte()
			continue
		}

		if next[0] == '[' {
			return loadArray(buffered)
		}

		return loadLines(buffered)
	}
}

func loadArray(reader io.Reader) ([]bson.M, error) {
	contents, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	// Extended JSON needs a document at the top level
	wrapped := make([]byte, 0, len(contents)+16)
	wrapped = append(wrapped, `{"documents":`...)
	wrapped = append(wrapped, contents...)
	wrapped = append(wrapped, '}')

	var export struct {
		Documents []bson.M `bson:"documents"`
	}
	if err := bson.UnmarshalExtJSON(wrapped, false, &export); err != nil {
		return nil, fmt.Errorf("decode document array: %w", err)
	}

	if export.Documents == nil {
		return []bson.M{}, nil
	}

	return export.Documents, nil
}

func loadLines(reader io.Reader) ([]bson.M, error) {
	documents := []bson.M{}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxDocumentSize)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var document bson.M
		if err := bson.UnmarshalExtJSON(line, false, &document); err != nil {
			return nil, fmt.Errorf("decode document on line %d: %w", lineNumber, err)
		}

		documents = append(documents, document)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return documents, nil
}

// NewMemoryEngineFromDirectory loads every <collection>.json or <collection>.jsonl file found in directory
func NewMemoryEngineFromDirectory(directory string) (*MemoryEngine, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, err
	}

	source, err := filepath.Abs(directory)
	if err != nil {
		return nil, err
	}

	engine := NewMemoryEngine()
	engine.source = source

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		extension := filepath.Ext(entry.Name())
		if extension != ".json" && extension != ".jsonl" {
			continue
		}

		collection := strings.TrimSuffix(entry.Name(), extension)

		documents, err := loadFile(filepath.Join(directory, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", entry.Name(), err)
		}

		engine.Insert(collection, documents...)

		log.Info().Str("collection", collection).Int("documents", len(documents)).Msg("Loaded fixture collection")
	}

	return engine, nil
}

func loadFile(path string) ([]bson.M, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadDocuments(file)
}
