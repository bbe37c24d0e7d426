package cascade

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadTagNames reads human readable names for detection tags from the given
// text file.  Each line holds a numeric tag followed by whitespace and the
// name, eg. "0 face".  Blank lines and lines starting with # are skipped.
func LoadTagNames(file string) (map[Tag]string, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	// create a scanner to read the file.
	scanner := bufio.NewScanner(f)

	names := make(map[Tag]string)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.SplitN(line, " ", 2)

		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed line %q", line)
		}

		tag, err := strconv.Atoi(fields[0])

		if err != nil {
			return nil, fmt.Errorf("malformed tag in line %q: %w", line, err)
		}

		names[Tag(tag)] = strings.TrimSpace(fields[1])
	}

	// check for errors during scanning
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return names, nil
}
