package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	log "github.com/golang/glog"
)

type WordCount struct {
	WordId uint32
	Count  uint32
}

// Document is a sparse bag of words, kept in the order it was read
type Document []*WordCount

// total number of word occurrences in the document
func (d Document) Occurrences() int {
	n := 0
	for _, wc := range d {
		n += int(wc.Count)
	}
	return n
}

type Corpus struct {
	VocabSize uint32
	DocNum    uint32
	Docs      []Document
}

// load training data from file, the file format should be like:
// [docId wordId:wordCount wordId:wordCount ... wordId:wordCount]
func (this *Corpus) Load(fn string) error {
	f, err := os.Open(fn)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := this.Read(f); err != nil {
		return fmt.Errorf("corpus: reading %s: %w", fn, err)
	}
	return nil
}

// Read parses documents from r and appends them to the corpus. Lines
// without any word are skipped, as are malformed word:count entries.
func (this *Corpus) Read(r io.Reader) error {
	vocabMaxId := int64(this.VocabSize) - 1

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		vals := strings.Fields(line)
		if len(vals) < 2 {
			log.Warningf("bad document: %s", line)
			continue
		}

		if _, err := strconv.ParseUint(vals[0], 10, 32); err != nil {
			return fmt.Errorf("corpus: bad document id %q: %w", vals[0], err)
		}

		var doc Document
		for _, kv := range vals[1:] {
			wc := strings.Split(kv, ":")
			if len(wc) != 2 {
				log.Warningf("bad word count: %s", kv)
				continue
			}

			wordId, err := strconv.ParseUint(wc[0], 10, 32)
			if err != nil {
				return fmt.Errorf("corpus: bad word id %q: %w", wc[0], err)
			}

			count, err := strconv.ParseUint(wc[1], 10, 32)
			if err != nil {
				return fmt.Errorf("corpus: bad word count %q: %w", wc[1], err)
			}
			if count == 0 {
				continue
			}

			doc = append(doc, &WordCount{
				WordId: uint32(wordId),
				Count:  uint32(count),
			})
			if int64(wordId) > vocabMaxId {
				vocabMaxId = int64(wordId)
			}
		}
		if len(doc) == 0 {
			log.Warningf("document without words: %s", line)
			continue
		}

		this.Docs = append(this.Docs, doc)
		this.DocNum += uint32(1)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	this.VocabSize = uint32(vocabMaxId + 1)

	log.Infof("number of documents %d", this.DocNum)
	log.Infof("vocabulary size %d", this.VocabSize)
	return nil
}

// Batches splits the documents into consecutive mini-batches of at most
// size documents each.
func (this *Corpus) Batches(size int) [][]Document {
	if size <= 0 {
		size = len(this.Docs)
	}
	var batches [][]Document
	for begin := 0; begin < len(this.Docs); begin += size {
		end := begin + size
		if end > len(this.Docs) {
			end = len(this.Docs)
		}
		batches = append(batches, this.Docs[begin:end])
	}
	return batches
}

// Validate checks every word id against a vocabulary of numWords words
func Validate(docs []Document, numWords int) error {
	for i, doc := range docs {
		for _, wc := range doc {
			if int(wc.WordId) >= numWords {
				return fmt.Errorf("corpus: document %d: word id %d out of vocabulary of size %d",
					i, wc.WordId, numWords)
			}
			if wc.Count == 0 {
				return fmt.Errorf("corpus: document %d: zero count for word %d", i, wc.WordId)
			}
		}
	}
	return nil
}
