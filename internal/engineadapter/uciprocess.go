package engineadapter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/blunext/chessinvestigator/board"
	"github.com/blunext/chessinvestigator/internal/errs"
)

// UCIProcess drives one UCI engine subprocess. Its shape (stdin/stdout
// pipes, a line-reading goroutine racing a timeout) is adapted from the
// teacher's tools/tournament/uci_client.go Engine type; unlike that
// tournament runner it collects every multipv "info" line rather than
// just the final bestmove, and it normalizes every score to White's POV.
type UCIProcess struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	mu      sync.Mutex
	timeout time.Duration
}

// NewUCIProcess starts path as a subprocess and performs the UCI handshake.
func NewUCIProcess(path string, args ...string) (*UCIProcess, error) {
	cmd := exec.Command(path, args...)
	setProcessGroup(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start engine: %w", err)
	}

	p := &UCIProcess{
		cmd:     cmd,
		stdin:   stdin,
		stdout:  bufio.NewReader(stdout),
		timeout: 30 * time.Second,
	}

	p.send("uci")
	if _, err := p.readUntil("uciok"); err != nil {
		return nil, fmt.Errorf("uci handshake: %w", err)
	}
	p.send("isready")
	if _, err := p.readUntil("readyok"); err != nil {
		return nil, fmt.Errorf("isready handshake: %w", err)
	}
	return p, nil
}

// Close terminates the engine process and releases its process group.
func (p *UCIProcess) Close() error {
	p.mu.Lock()
	p.send("quit")
	p.mu.Unlock()
	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		killProcessGroup(p.cmd)
		return <-done
	}
}

// Analyze runs `go depth N [multipv M]` from fen and returns every
// multipv line's final info, normalized to White's POV. A timeout or
// process failure yields a zero AnalysisResult and a wrapped
// errs.ErrEngineUnavailable, never a panic.
func (p *UCIProcess) Analyze(ctx context.Context, fen string, depth, multiPV int) (AnalysisResult, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("analyze: %w: %v", errs.ErrMalformedFEN, err)
	}
	if multiPV < 1 {
		multiPV = 1
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.send("ucinewgame")
	p.send(fmt.Sprintf("position fen %s", fen))
	p.send(fmt.Sprintf("setoption name MultiPV value %d", multiPV))
	p.send(fmt.Sprintf("go depth %d", depth))

	byLine := make(map[int]infoLine, multiPV)
	for {
		select {
		case <-ctx.Done():
			return AnalysisResult{}, fmt.Errorf("analyze: %w: %v", errs.ErrEngineUnavailable, ctx.Err())
		default:
		}

		line, err := p.readLine()
		if err != nil {
			return AnalysisResult{}, fmt.Errorf("analyze: %w: %v", errs.ErrEngineUnavailable, err)
		}
		if strings.HasPrefix(line, "info") && strings.Contains(line, " pv ") {
			if il, ok := parseInfoLine(line); ok {
				byLine[il.multiPV] = il
			}
			continue
		}
		if strings.HasPrefix(line, "bestmove") {
			break
		}
	}

	if len(byLine) == 0 {
		return AnalysisResult{}, fmt.Errorf("analyze: %w: no info lines", errs.ErrEngineUnavailable)
	}
	return buildResult(&pos, byLine, multiPV)
}

func (p *UCIProcess) send(cmd string) {
	fmt.Fprintln(p.stdin, cmd)
}

func (p *UCIProcess) readLine() (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := p.stdout.ReadString('\n')
		ch <- result{strings.TrimSpace(line), err}
	}()
	select {
	case r := <-ch:
		return r.line, r.err
	case <-time.After(p.timeout):
		return "", fmt.Errorf("timeout reading from engine")
	}
}

func (p *UCIProcess) readUntil(prefix string) (string, error) {
	for {
		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(line, prefix) {
			return line, nil
		}
	}
}

type infoLine struct {
	multiPV  int
	cp       int
	mate     int // 0 = not a mate score
	pvUCI    []string
}

// parseInfoLine extracts score/multipv/pv from one `info ...` line. Every
// other token (depth, nodes, nps, hashfull, ...) is ignored, so engines
// that emit extra fields are tolerated.
func parseInfoLine(line string) (infoLine, bool) {
	fields := strings.Fields(line)
	var il infoLine
	il.multiPV = 1
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "multipv":
			if i+1 < len(fields) {
				il.multiPV, _ = strconv.Atoi(fields[i+1])
			}
		case "score":
			if i+2 < len(fields) {
				switch fields[i+1] {
				case "cp":
					il.cp, _ = strconv.Atoi(fields[i+2])
				case "mate":
					il.mate, _ = strconv.Atoi(fields[i+2])
				}
			}
		case "pv":
			il.pvUCI = append([]string{}, fields[i+1:]...)
			i = len(fields)
		}
	}
	return il, len(il.pvUCI) > 0
}

const mateSentinelCP = 10000

// buildResult normalizes every multipv line to White's POV and converts
// UCI move lists to SAN by replaying them from pos.
func buildResult(pos *board.Position, byLine map[int]infoLine, multiPV int) (AnalysisResult, error) {
	sideFactor := 1
	if pos.SideToMove == board.Black {
		sideFactor = -1
	}

	top := make([]TopMove, 0, multiPV)
	for rank := 1; rank <= multiPV; rank++ {
		il, ok := byLine[rank]
		if !ok {
			continue
		}
		cp, mateIn := normalizeScore(il, sideFactor)
		pvSAN, err := replayUCI(*pos, il.pvUCI)
		if err != nil {
			continue
		}
		moveSAN := ""
		if len(pvSAN) > 0 {
			moveSAN = pvSAN[0]
		}
		top = append(top, TopMove{
			MoveUCI: firstOr(il.pvUCI, ""),
			MoveSAN: moveSAN,
			EvalCP:  cp,
			MateIn:  mateIn,
			Rank:    rank,
		})
	}
	if len(top) == 0 {
		return AnalysisResult{}, fmt.Errorf("analyze: %w: no legal pv replayed", errs.ErrEngineUnavailable)
	}

	best := top[0]
	result := AnalysisResult{
		EvalCP:      best.EvalCP,
		MateIn:      best.MateIn,
		BestMoveUCI: best.MoveUCI,
		BestMoveSAN: best.MoveSAN,
		TopMoves:    top,
	}
	if bestLine, ok := byLine[1]; ok {
		result.PV = bestLine.pvUCI
		result.PVSan, _ = replayUCI(*pos, bestLine.pvUCI)
	}
	if len(top) > 1 {
		result.HasSecondBest = true
		result.SecondBestUCI = top[1].MoveUCI
		result.SecondBestSAN = top[1].MoveSAN
		result.SecondBestCP = top[1].EvalCP
		result.SecondMateIn = top[1].MateIn
	}
	return result, nil
}

func normalizeScore(il infoLine, sideFactor int) (int, *int) {
	if il.mate != 0 {
		// UCI reports mate in moves; convert to plies: the mating side's
		// Nth move is ply 2N-1, being mated on the opponent's Nth move is ply 2N.
		plies := 2*il.mate - 1
		if il.mate < 0 {
			plies = -2 * il.mate
		}
		cp := mateSentinelCP * sideFactor
		if il.mate < 0 {
			cp = -cp
		}
		return cp, &plies
	}
	return il.cp * sideFactor, nil
}

func firstOr(list []string, def string) string {
	if len(list) == 0 {
		return def
	}
	return list[0]
}

// replayUCI applies a sequence of UCI moves from pos and returns their SAN,
// stopping (with an error) at the first move that isn't legal — engines
// occasionally emit a PV that runs past a mate or repetition claim.
func replayUCI(pos board.Position, uciMoves []string) ([]string, error) {
	san := make([]string, 0, len(uciMoves))
	cur := pos
	for _, u := range uciMoves {
		move, ok := findByUCI(&cur, u)
		if !ok {
			return san, fmt.Errorf("replay: %w: %s", errs.ErrIllegalMove, u)
		}
		san = append(san, move.San)
		cur = cur.MakeMove(move)
	}
	return san, nil
}

func findByUCI(pos *board.Position, uci string) (board.Move, bool) {
	for _, m := range pos.LegalMoves() {
		if m.UCI() == uci {
			return m, true
		}
	}
	return board.Move{}, false
}
