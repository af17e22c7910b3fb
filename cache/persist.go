package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/charmap"
)

// Load failures. Both ErrNotFound and ErrMalformed match ErrLoad.
// A failed load leaves the cache empty; it is never fatal to a session.
var (
	ErrLoad      = errors.New("cache: load failed")
	ErrNotFound  = fmt.Errorf("%w: file not found", ErrLoad)
	ErrMalformed = fmt.Errorf("%w: malformed document", ErrLoad)
)

// document is the persisted form: voltage > current > working distance > lens >
// parameter id. encoding/json writes map keys sorted, which makes the output
// canonical.
//
// The wire is 8-bit, so every key and value is stored as ISO 8859-1 text: each
// byte becomes the code point of the same number. ASCII is unchanged and any
// byte string survives a round trip.
type document map[string]map[string]map[string]map[string]map[string]string

// leafKeys are the parameter ids every stored leaf must carry.
var leafKeys = []string{"GA", "OC", "OF", "ST", "STC"}

func (d document) put(p OperatingPoint, params TunedParams) {
	voltage, current := latin1(p.Voltage), latin1(p.Current)
	distance, lens := latin1(p.WorkingDistance), latin1(p.Lens)

	byCurrent, ok := d[voltage]
	if !ok {
		byCurrent = map[string]map[string]map[string]map[string]string{}
		d[voltage] = byCurrent
	}
	byDistance, ok := byCurrent[current]
	if !ok {
		byDistance = map[string]map[string]map[string]string{}
		byCurrent[current] = byDistance
	}
	byLens, ok := byDistance[distance]
	if !ok {
		byLens = map[string]map[string]string{}
		byDistance[distance] = byLens
	}
	byLens[lens] = map[string]string{
		"GA":  latin1(params.GA),
		"OC":  latin1(params.OC),
		"OF":  latin1(params.OF),
		"ST":  latin1(params.ST),
		"STC": latin1(params.STC),
	}
}

func (d document) flatten() (map[OperatingPoint]TunedParams, error) {
	entries := map[OperatingPoint]TunedParams{}
	for voltage, byCurrent := range d {
		for current, byDistance := range byCurrent {
			for distance, byLens := range byDistance {
				for lens, leaf := range byLens {
					raw := []string{voltage, current, distance, lens}
					for _, key := range leafKeys {
						v, ok := leaf[key]
						if !ok {
							return nil, fmt.Errorf("%s > %s > %s > %s: missing %s", voltage, current, distance, lens, key)
						}
						raw = append(raw, v)
					}

					for i, v := range raw {
						b, err := fromLatin1(v)
						if err != nil {
							return nil, fmt.Errorf("%s > %s > %s > %s: %q: %w", voltage, current, distance, lens, v, err)
						}
						raw[i] = b
					}

					point := OperatingPoint{raw[0], raw[1], raw[2], raw[3]}
					entries[point] = TunedParams{GA: raw[4], OC: raw[5], OF: raw[6], ST: raw[7], STC: raw[8]}
				}
			}
		}
	}

	return entries, nil
}

// latin1 maps each byte of s to the code point of the same value.
func latin1(s string) string {
	out, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		// ISO 8859-1 assigns every byte, so decoding cannot fail.
		return s
	}

	return out
}

// fromLatin1 reverses latin1. Code points above U+00FF have no byte form.
func fromLatin1(s string) (string, error) {
	return charmap.ISO8859_1.NewEncoder().String(s)
}

// MarshalJSON returns the canonical document: keys sorted at every level,
// no whitespace, no HTML escaping and no trailing newline.
func (c *Cache) MarshalJSON() ([]byte, error) {
	doc := document{}
	c.entries.Range(func(p OperatingPoint, params TunedParams) bool {
		doc.put(p, params)
		return true
	})

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("cache: encode: %w", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON replaces the contents with the decoded document. On failure the
// cache is left empty and the error wraps ErrMalformed.
func (c *Cache) UnmarshalJSON(data []byte) error {
	if c.entries == nil {
		*c = *New()
	}

	entries, err := decode(data)
	if err != nil {
		c.Reset()
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	c.replace(entries)

	return nil
}

func decode(data []byte) (map[OperatingPoint]TunedParams, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("document is not an object")
	}

	return doc.flatten()
}

// WriteTo writes the canonical document to w.
func (c *Cache) WriteTo(w io.Writer) (int64, error) {
	data, err := c.MarshalJSON()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)

	return int64(n), err
}

// ReadFrom replaces the contents with the document read from r.
func (c *Cache) ReadFrom(r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		c.Reset()
		return int64(len(data)), fmt.Errorf("%w: %w", ErrLoad, err)
	}

	return int64(len(data)), c.UnmarshalJSON(data)
}

// Persist writes the whole cache to path as one complete document. The file is
// written next to path and renamed into place, so readers never see a partial file.
func (c *Cache) Persist(path string) error {
	data, err := c.MarshalJSON()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("cache: persist %s: %w", path, err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpName, 0o644)
	}
	if err == nil {
		err = os.Rename(tmpName, path)
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cache: persist %s: %w", path, err)
	}

	return nil
}

// Restore replaces the contents with the document stored at path.
//
// A missing file yields an error wrapping ErrNotFound and an unparsable one an
// error wrapping ErrMalformed. In both cases the cache is left empty and usable;
// the error only reports the condition.
func (c *Cache) Restore(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		c.Reset()
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return fmt.Errorf("%w: %w", ErrLoad, err)
	}

	entries, err := decode(data)
	if err != nil {
		c.Reset()
		return fmt.Errorf("%w: %s: %w", ErrMalformed, path, err)
	}
	c.replace(entries)

	return nil
}
