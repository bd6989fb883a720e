package domain

// Key is a single keystroke read from the terminal.
type Key byte

// Control surface. Keys are case-sensitive.
const (
	KeyStop      Key = 'x'
	KeyFaster    Key = 'z'
	KeySlower    Key = 's'
	KeyLeft      Key = 'q'
	KeyRight     Key = 'd'
	KeyHelp      Key = 'h'
	KeyHelpAlt   Key = '?'
	KeyQuit      Key = 'a'
	KeyInterrupt Key = 0x03 // Ctrl-C
)

// DefaultHelpText describes the control surface.
const DefaultHelpText = `Controls:
  z = increase speed         -> +step
  s = decrease speed         -> -step
  q = turn left              -> left wheel backward, right wheel forward
  d = turn right             -> left wheel forward, right wheel backward
  x = stop                   -> V,0,0
  h = help
  a / Ctrl-C = quit
`
