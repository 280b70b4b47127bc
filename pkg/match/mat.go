package match

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/yourusername/bgrules/pkg/engine"
)

// MAT format is the Jellyfish/gnubg match format.
// Example format:
//
//	; [Site "GamesGrid"]
//	; [Player 1 "name1"]
//	; [Player 2 "name2"]
//	7 point match
//
//	Game 1
//	name1 : 0                          name2 : 0
//	  1) 31: 8/5 6/5                   52: 24/22 13/8
//	  2) 43: 24/20 13/10               Doubles => 2
//	  3)  Takes                        ...
//	      Wins 1 point

var (
	matchLengthRE = regexp.MustCompile(`(\d+)\s+point\s+match`)
	gameHeaderRE  = regexp.MustCompile(`^Game\s+(\d+)`)
	scoreLineRE   = regexp.MustCompile(`^(.+?)\s*:\s*(\d+)\s+(.+?)\s*:\s*(\d+)`)
	moveLineRE    = regexp.MustCompile(`^\s*(\d+)\)`)
	winsRE        = regexp.MustCompile(`(?i)wins\s+(\d+)\s+points?`)
	tagRE         = regexp.MustCompile(`\[([\w ]+?)\s+"([^"]*)"\]`)
	columnGapRE   = regexp.MustCompile(`\s{3,}`)
)

// rightColumn is the text offset from which an entry belongs to the
// right-hand player.
const rightColumn = 20

// ImportMAT reads a match from MAT format.
func ImportMAT(r io.Reader) (*Match, error) {
	scanner := bufio.NewScanner(r)
	match := &Match{
		Games: make([]*Game, 0),
	}

	var currentGame *Game
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		raw := strings.TrimRight(scanner.Text(), " \t\r")
		line := strings.TrimSpace(raw)

		// Skip empty lines
		if line == "" {
			continue
		}

		// Parse metadata comments
		if strings.HasPrefix(line, ";") {
			if m := tagRE.FindStringSubmatch(line); m != nil {
				key := strings.ToLower(strings.ReplaceAll(m[1], " ", ""))
				value := m[2]
				switch key {
				case "player1":
					match.Player1 = value
				case "player2":
					match.Player2 = value
				case "site", "place":
					match.Place = value
				case "event":
					match.Event = value
				case "date", "eventdate":
					match.Date = value
				case "annotator", "transcriber":
					match.Annotator = value
				}
			}
			continue
		}

		// Parse match length
		if currentGame == nil {
			if m := matchLengthRE.FindStringSubmatch(line); m != nil {
				match.MatchLength, _ = strconv.Atoi(m[1])
				continue
			}
		}

		// Parse game header
		if m := gameHeaderRE.FindStringSubmatch(line); m != nil {
			if currentGame != nil {
				match.Games = append(match.Games, currentGame)
			}
			gameNum, _ := strconv.Atoi(m[1])
			currentGame = NewGame(gameNum, 0, 0)
			continue
		}
		if currentGame == nil {
			continue
		}

		switch {
		case moveLineRE.MatchString(line):
			if err := parseMoveLineMAT(raw, currentGame); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		case winsRE.MatchString(line):
			m := winsRE.FindStringSubmatch(line)
			currentGame.Points, _ = strconv.Atoi(m[1])
			currentGame.Winner = engine.White
			if strings.Index(raw, strings.TrimSpace(m[0])) >= rightColumn {
				currentGame.Winner = engine.Black
			}
		case scoreLineRE.MatchString(line):
			// name : score   name : score
			m := scoreLineRE.FindStringSubmatch(line)
			if match.Player1 == "" {
				match.Player1 = strings.TrimSpace(m[1])
			}
			if match.Player2 == "" {
				match.Player2 = strings.TrimSpace(m[3])
			}
			currentGame.Score1, _ = strconv.Atoi(m[2])
			currentGame.Score2, _ = strconv.Atoi(m[4])
		}
	}

	if currentGame != nil {
		match.Games = append(match.Games, currentGame)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading MAT file: %w", err)
	}

	return match, nil
}

// parseMoveLineMAT parses a single move line in MAT format.
// Format: "  1) 31: 8/5 6/5       52: 24/22 13/8". A line whose left entry
// is blank starts with the right column.
func parseMoveLineMAT(line string, game *Game) error {
	parts := strings.SplitN(line, ")", 2)
	if len(parts) < 2 {
		return nil
	}
	rest := parts[1]
	body := strings.TrimSpace(rest)
	if body == "" {
		return nil
	}

	halves := columnGapRE.Split(body, 2)
	players := []engine.Color{engine.White, engine.Black}
	if indent := len(rest) - len(strings.TrimLeft(rest, " \t")); indent >= rightColumn {
		players = players[1:]
		halves = halves[:1]
	}

	for i, half := range halves {
		if err := parsePlayerMoveMAT(strings.TrimSpace(half), players[i], game); err != nil {
			return err
		}
	}
	return nil
}

// parsePlayerMoveMAT parses a single player's roll and move.
// Format: "31: 8/5 6/5" or "Doubles => 2" or "Takes" or "Drops"
func parsePlayerMoveMAT(text string, player engine.Color, game *Game) error {
	if text == "" {
		return nil
	}

	lowerText := strings.ToLower(text)
	switch {
	case strings.HasPrefix(lowerText, "doubles"):
		value := 0
		if idx := strings.Index(text, "=>"); idx >= 0 {
			value, _ = strconv.Atoi(strings.TrimSpace(text[idx+2:]))
		}
		game.AddDouble(player, value)
		return nil
	case lowerText == "takes" || lowerText == "accepts":
		game.AddTake(player)
		return nil
	case lowerText == "drops" || lowerText == "passes" || lowerText == "rejects":
		game.AddPass(player)
		return nil
	case winsRE.MatchString(text):
		m := winsRE.FindStringSubmatch(text)
		game.Points, _ = strconv.Atoi(m[1])
		game.Winner = player
		return nil
	}

	// Parse roll and move: "31: 8/5 6/5"
	colonIdx := strings.Index(text, ":")
	if colonIdx == -1 {
		return fmt.Errorf("unrecognised entry %q", text)
	}

	diceStr := strings.TrimSpace(text[:colonIdx])
	moveStr := strings.TrimSpace(text[colonIdx+1:])

	if len(diceStr) != 2 {
		return fmt.Errorf("bad roll %q", diceStr)
	}
	die1, die2 := int(diceStr[0]-'0'), int(diceStr[1]-'0')
	if die1 < 1 || die1 > 6 || die2 < 1 || die2 > 6 {
		return fmt.Errorf("bad roll %q", diceStr)
	}

	if strings.Contains(strings.ToLower(moveStr), "cannot") {
		moveStr = ""
	}
	game.AddRoll(player, die1, die2, moveStr)
	return nil
}

// ExportMAT writes a match in MAT format.
func ExportMAT(w io.Writer, match *Match) error {
	bw := bufio.NewWriter(w)

	if match.Place != "" {
		fmt.Fprintf(bw, " ; [Site \"%s\"]\n", match.Place)
	}
	if match.Event != "" {
		fmt.Fprintf(bw, " ; [Event \"%s\"]\n", match.Event)
	}
	if match.Date != "" {
		fmt.Fprintf(bw, " ; [Date \"%s\"]\n", match.Date)
	}
	fmt.Fprintf(bw, " ; [Player 1 \"%s\"]\n", match.Player1)
	fmt.Fprintf(bw, " ; [Player 2 \"%s\"]\n", match.Player2)
	if match.Annotator != "" {
		fmt.Fprintf(bw, " ; [Annotator \"%s\"]\n", match.Annotator)
	}

	if match.MatchLength > 0 {
		fmt.Fprintf(bw, " %d point match\n\n", match.MatchLength)
	} else {
		fmt.Fprintf(bw, " Unlimited match\n\n")
	}

	for _, game := range match.Games {
		exportGameMAT(bw, match, game)
	}

	return bw.Flush()
}

// exportGameMAT writes a single game. Each numbered row holds the left
// player's entry and the right player's reply.
func exportGameMAT(w io.Writer, match *Match, game *Game) {
	fmt.Fprintf(w, " Game %d\n", game.Number)
	fmt.Fprintf(w, " %-32s %s : %d\n", fmt.Sprintf("%s : %d", match.Player1, game.Score1), match.Player2, game.Score2)

	row := 0
	open := false // a row holds a left entry awaiting its reply
	for _, action := range game.Actions {
		text := formatActionMAT(action)
		if action.Player == engine.White {
			if open {
				fmt.Fprintln(w)
			}
			row++
			fmt.Fprintf(w, "%3d) %-28s", row, text)
			open = true
			continue
		}
		if !open {
			row++
			fmt.Fprintf(w, "%3d) %-28s", row, "")
		}
		fmt.Fprintf(w, " %s\n", text)
		open = false
	}
	if open {
		fmt.Fprintln(w)
	}

	if game.Winner != engine.None {
		unit := "point"
		if game.Points != 1 {
			unit = "points"
		}
		indent := 6
		if game.Winner == engine.Black {
			indent = 34
		}
		fmt.Fprintf(w, "%*sWins %d %s\n", indent, "", game.Points, unit)
	}
	fmt.Fprintln(w)
}

func formatActionMAT(a Action) string {
	switch a.Type {
	case ActionDouble:
		return fmt.Sprintf(" Doubles => %d", a.Value)
	case ActionTake:
		return " Takes"
	case ActionPass:
		return " Drops"
	}
	return strings.TrimSpace(fmt.Sprintf("%d%d: %s", a.Dice[0], a.Dice[1], a.Moves))
}
