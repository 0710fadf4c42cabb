package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/nshrhm/aoj-submission-manager/internal/app"
	"github.com/nshrhm/aoj-submission-manager/internal/lock"
	"github.com/nshrhm/aoj-submission-manager/internal/models"
)

const (
	studentHelp = `利用できるコマンド:
/ranking [n] - 総合ランキング上位 n 件
/problem <id> - 問題ごとの提出順ランキング
/whois <query> - AIZU ID または氏名で検索
/help - このメッセージを表示`

	adminHelp = studentHelp + `
/update - AOJ から最新の提出結果を取り込む`

	maxWhoisResults = 5
)

type commandHandler func(*tgbotapi.Message) error

func (b *Bot) routeStudentCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"start":   b.handleStart,
		"help":    b.handleHelp,
		"ranking": b.handleRanking,
		"problem": b.handleProblem,
		"whois":   b.handleWhois,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) routeAdminCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"update": b.handleUpdate,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		b.sendHelp(msg.Chat.ID)
		return
	}

	cmd := msg.Command()

	if handler, ok := b.routeStudentCommands(cmd); ok {
		if err := handler(msg); err != nil {
			logger.Error.Printf("Command error: %v", err)
			b.sendMessage(msg.Chat.ID, fmt.Sprintf("エラー: %v", err))
		}
		return
	}

	if b.isAdmin(msg) {
		if handler, ok := b.routeAdminCommands(cmd); ok {
			if err := handler(msg); err != nil {
				logger.Error.Printf("Command error: %v", err)
				b.sendMessage(msg.Chat.ID, fmt.Sprintf("エラー: %v", err))
			}
		}
		return
	}

	b.sendHelp(msg.Chat.ID)
}

// isAdmin reports whether msg was sent by a configured admin. Channel posts
// carry no sender.
func (b *Bot) isAdmin(msg *tgbotapi.Message) bool {
	return msg.From != nil && b.admins[msg.From.ID]
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	var text string
	if b.isAdmin(msg) {
		text = adminHelp
	} else {
		text = studentHelp
	}

	return b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) sendHelp(chatID int64) error {
	return b.sendMessage(chatID, "コマンドで操作してください。一覧は /help で表示されます。")
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	return b.sendMessage(msg.Chat.ID, "AOJ の提出状況をお知らせします。\n\n"+studentHelp)
}

func (b *Bot) handleRanking(msg *tgbotapi.Message) error {
	top, err := parseTop(msg.CommandArguments(), b.defaultTop)
	if err != nil {
		return err
	}

	report, _, err := b.service.Rankings(context.Background())
	if err != nil {
		return fmt.Errorf("ランキングを作成できません: %w", err)
	}
	return b.sendMessage(msg.Chat.ID, FormatTotal(report, top))
}

func (b *Bot) handleProblem(msg *tgbotapi.Message) error {
	problemID := strings.TrimSpace(msg.CommandArguments())
	if problemID == "" {
		return fmt.Errorf("問題 ID を指定してください: /problem ITP1_1_A")
	}

	report, _, err := b.service.Rankings(context.Background())
	if err != nil {
		return fmt.Errorf("ランキングを作成できません: %w", err)
	}
	text, err := FormatProblem(report, problemID, b.defaultTop)
	if err != nil {
		return err
	}
	return b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) handleWhois(msg *tgbotapi.Message) error {
	query := strings.TrimSpace(msg.CommandArguments())
	if query == "" {
		return fmt.Errorf("検索語を指定してください: /whois yamada")
	}

	report, users, err := b.service.Rankings(context.Background())
	if err != nil {
		return fmt.Errorf("ランキングを作成できません: %w", err)
	}

	matches := FindUsers(users, query, maxWhoisResults)
	if len(matches) == 0 {
		return b.sendMessage(msg.Chat.ID, fmt.Sprintf("%q に一致する学生はいません", query))
	}

	var sb strings.Builder
	for _, u := range matches {
		sb.WriteString(FormatUser(u, report))
		sb.WriteString("\n")
	}
	return b.sendMessage(msg.Chat.ID, sb.String())
}

func (b *Bot) handleUpdate(msg *tgbotapi.Message) error {
	b.sendMessage(msg.Chat.ID, "更新を開始します...")

	summary, err := b.service.Update(context.Background(), app.UpdateOptions{})
	if errors.Is(err, lock.ErrLocked) {
		return b.sendMessage(msg.Chat.ID, "別の更新が実行中です")
	}
	if err != nil {
		return err
	}
	return b.sendMessage(msg.Chat.ID, fmt.Sprintf(
		"更新完了: %d 人, %d / %d スロット更新, 取得失敗 %d",
		summary.Users, summary.Updated, summary.Slots, summary.FetchFailures,
	))
}

func (b *Bot) sendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}

func parseTop(args string, fallback int) (int, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(args)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("件数は正の整数で指定してください: %q", args)
	}
	return n, nil
}

func FormatTotal(report models.RankingReport, top int) string {
	if len(report.Total) == 0 {
		return "まだ得点のある学生はいません"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "総合ランキング (%s)\n", report.Day)
	for i, r := range report.Total {
		if i >= top {
			break
		}
		fmt.Fprintf(&sb, "%d. %s %s %s - %d点\n", r.Rank, r.AccountID, r.Surname, r.GivenName, r.Total)
	}
	return sb.String()
}

func FormatProblem(report models.RankingReport, problemID string, top int) (string, error) {
	p, ok := report.Problem(problemID)
	if !ok {
		return "", fmt.Errorf("問題 %s は登録されていません", problemID)
	}
	if len(p.Rows) == 0 {
		return fmt.Sprintf("%s はまだ誰も正解していません", problemID), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s 提出順 (%s)\n", problemID, report.Day)
	for i, r := range p.Rows {
		if i >= top {
			break
		}
		fmt.Fprintf(&sb, "%d. %s %s %s - %s\n", r.Rank, r.AccountID, r.Surname, r.GivenName, r.SubmittedAt)
	}
	return sb.String(), nil
}

// FindUsers matches query against account ids and full names, closest
// matches first. An exact account id match wins outright.
func FindUsers(users []models.UserRecord, query string, limit int) []models.UserRecord {
	q := strings.ToLower(query)

	targets := make([]string, 0, len(users)*2)
	owner := make(map[string]int, len(users)*2)
	for i, u := range users {
		if strings.ToLower(u.AccountID) == q {
			return []models.UserRecord{u}
		}
		for _, target := range []string{u.AccountID, u.Surname + " " + u.GivenName} {
			lower := strings.ToLower(target)
			if _, seen := owner[lower]; !seen {
				owner[lower] = i
				targets = append(targets, lower)
			}
		}
	}

	ranks := fuzzy.RankFind(q, targets)
	sort.Sort(ranks)

	out := make([]models.UserRecord, 0, limit)
	picked := make(map[int]bool)
	for _, r := range ranks {
		i := owner[r.Target]
		if picked[i] {
			continue
		}
		picked[i] = true
		out = append(out, users[i])
		if len(out) == limit {
			break
		}
	}
	return out
}

// FormatUser summarizes one student: total rank when ranked, then each
// problem as score and submission time.
func FormatUser(u models.UserRecord, report models.RankingReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s %s)", u.AccountID, u.Surname, u.GivenName)

	rank := "圏外"
	for _, r := range report.Total {
		if r.AccountID == u.AccountID {
			rank = fmt.Sprintf("%d位", r.Rank)
			break
		}
	}
	fmt.Fprintf(&sb, " 合計 %d点 %s\n", u.Total(report.Problems), rank)

	for _, id := range report.Problems {
		slot := u.Slot(id)
		if slot.Score <= 0 {
			fmt.Fprintf(&sb, "  %s: 未提出\n", id)
			continue
		}
		submittedAt := ""
		if p, ok := report.Problem(id); ok {
			for _, r := range p.Rows {
				if r.AccountID == u.AccountID {
					submittedAt = " " + r.SubmittedAt
					break
				}
			}
		}
		fmt.Fprintf(&sb, "  %s: %d点%s\n", id, slot.Score, submittedAt)
	}
	return sb.String()
}
