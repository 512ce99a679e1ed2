package internal

// Name used for directory naming, CLI display, and logger grouping.
const Name = "sarus"
