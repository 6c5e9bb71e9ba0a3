package parser

type txtParser struct{}

func (txtParser) CanParse(filename string) bool { return hasExt(filename, ".txt") }

func (txtParser) Parse(content []byte) (string, error) {
	return string(content), nil
}
