package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"EnJaCorpus/internal/bitext"
)

const maxLineSize = 4 * 1024 * 1024

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}

type tatoebaRecord struct {
	Translation *struct {
		EN *string `json:"en"`
		JA *string `json:"ja"`
	} `json:"translation"`
}

// ReadTatoeba parses JSON lines of the form
// {"id": "...", "translation": {"en": "...", "ja": "..."}}.
// Blank lines are skipped. limit > 0 stops after that many pairs.
func ReadTatoeba(r io.Reader, name string, limit int) (bitext.Corpus, error) {
	var c bitext.Corpus
	sc := newScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var rec tatoebaRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return bitext.Corpus{}, fmt.Errorf("%s:%d: %w", name, line, err)
		}
		if rec.Translation == nil || rec.Translation.EN == nil || rec.Translation.JA == nil {
			return bitext.Corpus{}, fmt.Errorf("%s:%d: missing translation.en or translation.ja", name, line)
		}
		c.Append(*rec.Translation.EN, *rec.Translation.JA)
		if limit > 0 && c.Len() >= limit {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return bitext.Corpus{}, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

// ReadWikiMatrix parses "score\ten\tja" lines, keeping pairs whose margin
// score is at least minScore. limit > 0 stops after that many kept pairs.
func ReadWikiMatrix(r io.Reader, name string, minScore float64, limit int) (bitext.Corpus, error) {
	var c bitext.Corpus
	sc := newScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), " \r\n")
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != 3 {
			return bitext.Corpus{}, fmt.Errorf("%s:%d: want 3 tab-separated fields, got %d", name, line, len(fields))
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			return bitext.Corpus{}, fmt.Errorf("%s:%d: score: %w", name, line, err)
		}
		if score < minScore {
			continue
		}
		c.Append(fields[1], fields[2])
		if limit > 0 && c.Len() >= limit {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return bitext.Corpus{}, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

// ReadParallel zips two line-aligned readers. Both must have the same number
// of lines.
func ReadParallel(en, ja io.Reader, name string, limit int) (bitext.Corpus, error) {
	var c bitext.Corpus
	se, sj := newScanner(en), newScanner(ja)
	for {
		okE, okJ := se.Scan(), sj.Scan()
		if !okE || !okJ {
			if err := se.Err(); err != nil {
				return bitext.Corpus{}, fmt.Errorf("%s.en: %w", name, err)
			}
			if err := sj.Err(); err != nil {
				return bitext.Corpus{}, fmt.Errorf("%s.ja: %w", name, err)
			}
			if okE != okJ {
				return bitext.Corpus{}, fmt.Errorf("%s: %w: line counts differ after %d lines", name, bitext.ErrMisaligned, c.Len())
			}
			break
		}
		c.Append(strings.TrimRight(se.Text(), "\r"), strings.TrimRight(sj.Text(), "\r"))
		if limit > 0 && c.Len() >= limit {
			break
		}
	}
	return c, nil
}
