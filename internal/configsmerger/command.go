package configsmerger

// ResolveCommand implements the command-resolution table: providing a
// CLI entrypoint always discards both the image's entrypoint and the
// image's cmd, regardless of whether a CLI cmd is also given.
func ResolveCommand(cliEntry, cliCmd, metaEntry, metaCmd []string) ([]string, error) {
	switch {
	case len(cliEntry) > 0 && len(cliCmd) > 0:
		return concat(cliEntry, cliCmd), nil
	case len(cliEntry) > 0:
		return concat(cliEntry), nil
	case len(cliCmd) > 0:
		return concat(metaEntry, cliCmd), nil
	case len(metaEntry) > 0:
		return concat(metaEntry, metaCmd), nil
	case len(metaCmd) > 0:
		return concat(metaCmd), nil
	default:
		return nil, ErrNoCommand
	}
}

func concat(parts ...[]string) []string {
	out := make([]string, 0)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
