// bgengine - backgammon positions and rules from the command line
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/bgrules/pkg/engine"
	"github.com/yourusername/bgrules/pkg/match"
	"github.com/yourusername/bgrules/pkg/suggest"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "decode":
		return cmdDecode(args, out)
	case "moves":
		return cmdMoves(args, out)
	case "plays":
		return cmdPlays(args, out)
	case "play":
		return cmdPlay(args, out)
	case "normalize":
		return cmdNormalize(args, out)
	case "suggest":
		return cmdSuggest(args, out)
	case "replay":
		return cmdReplay(args, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `bgengine - Backgammon positions and rules

Usage: bgengine <command> [options]

Commands:
  decode     Describe a position
  moves      List single-die moves for the roll
  plays      List complete plays for the roll
  play       Play moves and print the resulting position
  normalize  Collapse moves for display
  suggest    Ask a suggestion service for a play and check it
  replay     Check a MAT match transcript move by move

Use "bgengine <command> -h" for command-specific help.

Position Format:
  Positions use the XGID format, with or without the "XGID=" prefix.
  Example: "XGID=-b----E-C---eE---c-e----B-:0:0:1:31:0:0:0:0:10"
  The dice may be given with -dice instead of in the position.`)
}

// positionFlags registers the flags shared by most commands.
func positionFlags(fs *flag.FlagSet) (pos, dice *string) {
	pos = fs.String("position", "", "Position (XGID)")
	fs.StringVar(pos, "p", "", "Position (short form)")
	dice = fs.String("dice", "", "Dice roll (e.g., 3,1 or 3-1)")
	fs.StringVar(dice, "d", "", "Dice roll (short form)")
	return pos, dice
}

// loadPosition decodes the position and applies the dice, if given.
func loadPosition(posStr, diceStr string) (engine.Position, error) {
	if posStr == "" {
		return engine.Position{}, fmt.Errorf("position required")
	}
	pos, err := engine.Decode(posStr)
	if err != nil {
		return pos, err
	}
	if diceStr != "" {
		d, err := parseDice(diceStr)
		if err != nil {
			return pos, err
		}
		pos.Turn.Dice = [2]uint8{uint8(d[0]), uint8(d[1])}
	}
	return pos, nil
}

func parseDice(diceStr string) ([2]int, error) {
	parts := strings.Split(diceStr, ",")
	if len(parts) != 2 {
		parts = strings.Split(diceStr, "-")
	}
	if len(parts) != 2 && len(diceStr) == 2 {
		parts = []string{diceStr[:1], diceStr[1:]}
	}
	if len(parts) != 2 {
		return [2]int{}, fmt.Errorf("dice should be in format '3,1' or '3-1'")
	}

	d1, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	d2, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || d1 < 1 || d1 > 6 || d2 < 1 || d2 > 6 {
		return [2]int{}, fmt.Errorf("dice values must be 1-6")
	}

	return [2]int{d1, d2}, nil
}

// beginTurn starts the turn of the side to move. An opening position is
// resolved with the dice as the opening roll.
func beginTurn(pos engine.Position) (engine.Result, error) {
	if pos.Turn.Player == engine.Open && pos.Turn.Rolled() {
		d := pos.Turn.Dice
		pos.Turn.Dice = [2]uint8{}
		return engine.Roll(pos, int(d[0]), int(d[1]))
	}
	return engine.Begin(pos)
}

func printPosition(w io.Writer, pos engine.Position) {
	b := pos.Board
	fmt.Fprintf(w, "%s\n", pos.XGID())
	fmt.Fprintf(w, "GNU BG ID: %s\n", pos.GnubgID())
	switch {
	case engine.Winner(b) != engine.None:
		fmt.Fprintf(w, "Winner:    %s\n", engine.Winner(b))
	case pos.Turn.Player == engine.Open:
		fmt.Fprintln(w, "To move:   opening roll")
	case pos.Turn.Rolled():
		fmt.Fprintf(w, "To move:   %s %d-%d\n", pos.Turn.Player, pos.Turn.Dice[0], pos.Turn.Dice[1])
	default:
		fmt.Fprintf(w, "To move:   %s (to roll)\n", pos.Turn.Player)
	}
	fmt.Fprintf(w, "Cube:      %d (%s)\n", pos.Cube.Face(), cubeOwner(pos.Cube.Owner))
	for _, c := range []engine.Color{engine.White, engine.Black} {
		fmt.Fprintf(w, "%-6s     pips %3d  bar %d  off %2d\n", c, b.PipCount(c), b.Bar(c), b.Off(c))
	}
}

func cubeOwner(c engine.Color) string {
	if c == engine.Centered {
		return "centered"
	}
	return c.String()
}

func cmdDecode(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	posFlag, _ := positionFlags(fs)
	fs.Parse(args)
	if *posFlag == "" && fs.NArg() > 0 {
		*posFlag = fs.Arg(0)
	}

	pos, err := loadPosition(*posFlag, "")
	if err != nil {
		return err
	}
	printPosition(out, pos)
	return nil
}

func cmdMoves(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("moves", flag.ExitOnError)
	posFlag, diceFlag := positionFlags(fs)
	fs.Parse(args)

	pos, err := loadPosition(*posFlag, *diceFlag)
	if err != nil {
		return err
	}
	res, err := beginTurn(pos)
	if err != nil {
		return err
	}
	if res.Ended {
		fmt.Fprintln(out, "No legal moves")
		return nil
	}
	for _, m := range engine.GenerateMoves(res.Position.Board, res.Turn) {
		fmt.Fprintf(out, "%-10s die %d\n", engine.FormatMoves([]engine.Move{m}, res.Turn.Player), m.Die)
	}
	return nil
}

func cmdPlays(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("plays", flag.ExitOnError)
	posFlag, diceFlag := positionFlags(fs)
	fs.Parse(args)

	pos, err := loadPosition(*posFlag, *diceFlag)
	if err != nil {
		return err
	}
	res, err := beginTurn(pos)
	if err != nil {
		return err
	}
	player, d := res.Position.Turn.Player, res.Position.Turn.Dice
	if res.Ended {
		fmt.Fprintln(out, "No legal moves")
		return nil
	}

	pl := engine.GeneratePlays(res.Position.Board, player, int(d[0]), int(d[1]))
	fmt.Fprintf(out, "%s %d-%d: %d plays using %d dice\n", player, d[0], d[1], len(pl.Plays), pl.MaxDice)
	for i, p := range pl.Plays {
		fmt.Fprintf(out, "%3d. %s\n", i+1, engine.FormatMoves(engine.NormalizeSequence(p), player))
	}
	return nil
}

func cmdPlay(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	posFlag, diceFlag := positionFlags(fs)
	movesFlag := fs.String("moves", "", `Moves to play (e.g., "13/8 6/5*")`)
	fs.Parse(args)
	if *movesFlag == "" {
		*movesFlag = strings.Join(fs.Args(), " ")
	}
	if *movesFlag == "" {
		fmt.Fprintln(os.Stderr, `Usage: bgengine play -position <xgid> [-dice 3-1] "8/5 6/5"`)
		return errUsage
	}

	pos, err := loadPosition(*posFlag, *diceFlag)
	if err != nil {
		return err
	}
	cur, err := beginTurn(pos)
	if err != nil {
		return err
	}
	if cur.Ended {
		return engine.ErrNoDice
	}
	player := cur.Turn.Player
	res := engine.PlayNotation(cur.Position, cur.Turn, *movesFlag)
	if !res.Applied {
		return res.Reason
	}

	fmt.Fprintf(out, "%s plays %s\n", player, engine.FormatMoves(engine.NormalizeSequence(res.Moves), player))
	if res.Turn != nil {
		fmt.Fprintf(out, "Dice left: %v\n", res.Turn.Available())
	}
	printPosition(out, res.Position)
	return nil
}

func cmdNormalize(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	colorFlag := fs.String("color", "white", "Side that moved (white or black)")
	fs.Parse(args)

	player, err := engine.ParseColor(*colorFlag)
	if err != nil {
		return err
	}
	moves, err := engine.ParseMoves(strings.Join(fs.Args(), " "), player)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, engine.FormatMoves(engine.NormalizeSequence(moves), player))
	return nil
}

func cmdSuggest(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	posFlag, diceFlag := positionFlags(fs)
	url := fs.String("url", os.Getenv("BG_SUGGEST_URL"), "Suggestion service URL")
	timeout := fs.Duration("timeout", 5*time.Second, "Request timeout")
	fs.Parse(args)
	if *url == "" {
		return fmt.Errorf("suggestion service URL required")
	}

	pos, err := loadPosition(*posFlag, *diceFlag)
	if err != nil {
		return err
	}
	cur, err := beginTurn(pos)
	if err != nil {
		return err
	}
	if cur.Ended {
		fmt.Fprintln(out, "No legal moves")
		return nil
	}

	client := suggest.NewClient(*url, suggest.WithTimeout(*timeout))
	defer client.Close()
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cand, err := client.Suggest(ctx, cur.Position)
	if err != nil {
		return err
	}
	v, err := suggest.Vet(cur.Position, cur.Turn, cand)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Suggested: %s\n", v.Notation)
	if !v.UsesMaxDice {
		fmt.Fprintln(out, "Warning: the suggestion leaves playable dice unused")
	}
	return nil
}

func cmdReplay(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	file := fs.String("file", "", "MAT transcript to replay")
	verbose := fs.Bool("v", false, "Print the position after every action")
	fs.Parse(args)
	if *file == "" && fs.NArg() > 0 {
		*file = fs.Arg(0)
	}
	if *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: bgengine replay [-v] -file <match.mat>")
		return errUsage
	}

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()
	m, err := match.ImportMAT(f)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s vs %s, %d games\n", m.Player1, m.Player2, len(m.Games))
	var failed error
	for _, g := range m.Games {
		steps, err := match.Replay(g)
		if *verbose {
			for _, st := range steps {
				fmt.Fprintf(out, "  %-6s %-7s %s\n", st.Action.Player, st.Action.Type, st.Position.XGID())
			}
		}
		if err != nil {
			fmt.Fprintf(out, "Game %d: %v\n", g.Number, err)
			if failed == nil {
				failed = err
			}
			continue
		}
		result := "unfinished"
		if g.Winner != engine.None {
			result = fmt.Sprintf("%s wins %d", g.Winner, g.Points)
		}
		fmt.Fprintf(out, "Game %d: %d actions ok, %s\n", g.Number, len(steps), result)
	}
	return failed
}
