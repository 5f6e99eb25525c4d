package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	apierrors "github.com/pribylovaa/career-bff/internal/errors"
	"github.com/pribylovaa/career-bff/internal/models"
	"github.com/pribylovaa/career-bff/mocks"
)

func expectLogin(e *testEnv, body string) *gomock.Call {
	return e.ds.EXPECT().
		Post(gomock.Any(), authHost+"/login", map[string]string{"email": "a@x.com", "password": "pw"}).
		Return(raw(body), nil)
}

func login(t *testing.T, e *testEnv) *models.LoginResult {
	t.Helper()

	res, err := e.svc.Login(context.Background(), authHost, userHost, "a@x.com", "pw")
	require.NoError(t, err)
	return res
}

func TestLogin_PersistsSessionAndFiltersResponse(t *testing.T) {
	e := newEnv(t)

	expectLogin(e, `{"user_id":7,"region":"us","email":"a@x.com","password":"hash"}`)

	res := login(t, e)
	require.Nil(t, res.User)
	require.NotContains(t, res.Auth, "password")
	require.True(t, res.Auth.Online())
	require.NotEmpty(t, res.Auth.RefreshToken())

	tok, _ := res.Auth[models.FieldToken].(string)
	claims, err := e.issuer.VerifyAccessToken(tok, "7")
	require.NoError(t, err)
	require.Equal(t, "us", claims.Region)

	_, err = e.issuer.VerifyAccessToken(tok, "8")
	requireKind(t, err, apierrors.KindUnauthorized, "")

	it := e.item(t, "7")
	require.NotNil(t, it)
	sess, err := models.DecodeSession(it.Raw)
	require.NoError(t, err)
	require.Equal(t, "hash", sess["password"])
	require.NotContains(t, sess, models.FieldToken)
	require.Equal(t, 720*time.Hour, e.mr.TTL(prefix+"7"))
}

func TestLogin_MissingRegion_UsesGatewayRegion(t *testing.T) {
	e := newEnv(t)

	expectLogin(e, `{"user_id":7}`)

	res := login(t, e)
	require.Equal(t, "jp", res.Auth.Region())
}

func TestLogin_UpstreamUnauthorized_Propagates(t *testing.T) {
	e := newEnv(t)

	e.ds.EXPECT().
		Post(gomock.Any(), authHost+"/login", gomock.Any()).
		Return(nil, apierrors.Unauthorized("wrong password"))

	_, err := e.svc.Login(context.Background(), authHost, userHost, "a@x.com", "pw")
	requireKind(t, err, apierrors.KindUnauthorized, "wrong password")
}

func TestLogin_NoUserID_IsServer(t *testing.T) {
	e := newEnv(t)

	expectLogin(e, `{"email":"a@x.com"}`)

	_, err := e.svc.Login(context.Background(), authHost, userHost, "a@x.com", "pw")
	requireKind(t, err, apierrors.KindServer, "invalid downstream response")
}

func TestLogoutThenLogin_IsLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	expectLogin(e, `{"user_id":7,"region":"jp"}`).Times(2)
	login(t, e)

	msg, err := e.svc.Logout(ctx, "7")
	require.NoError(t, err)
	require.Equal(t, "successfully logged out", msg)

	online, err := IsLogin(ctx, e.cache, "7")
	require.NoError(t, err)
	require.False(t, online)

	// Запись после выхода урезана, но не удалена.
	sess, err := models.DecodeSession(e.item(t, "7").Raw)
	require.NoError(t, err)
	require.Equal(t, models.Session{"user_id": sess["user_id"], "region": "jp", "online": false}, sess)
	require.Equal(t, "7", sess.UserID())

	_, err = e.svc.Logout(ctx, "7")
	requireKind(t, err, apierrors.KindClient, "logged out")

	login(t, e)

	online, err = IsLogin(ctx, e.cache, "7")
	require.NoError(t, err)
	require.True(t, online)
}

func TestLogout_NoSession_IsClient(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Logout(context.Background(), "7")
	requireKind(t, err, apierrors.KindClient, "logged out")
}

func TestGetNewTokenPair_RotatesRefreshToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	expectLogin(e, `{"user_id":7,"region":"jp"}`)
	first := login(t, e).Auth.RefreshToken()

	pair, err := e.svc.GetNewTokenPair(ctx, "7", first)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Token)
	require.NotEqual(t, first, pair.RefreshToken)

	claims, err := e.issuer.VerifyAccessToken(pair.Token, "7")
	require.NoError(t, err)
	require.Equal(t, "jp", claims.Region)

	sess, err := models.DecodeSession(e.item(t, "7").Raw)
	require.NoError(t, err)
	require.Equal(t, pair.RefreshToken, sess.RefreshToken())

	_, err = e.svc.GetNewTokenPair(ctx, "7", first)
	requireKind(t, err, apierrors.KindUnauthorized, "invalid refresh token")
}

func TestGetNewTokenPair_Rejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.GetNewTokenPair(ctx, "7", "whatever")
	requireKind(t, err, apierrors.KindUnauthorized, "invalid user")

	expectLogin(e, `{"user_id":7,"region":"jp"}`)
	refresh := login(t, e).Auth.RefreshToken()

	_, err = e.svc.GetNewTokenPair(ctx, "7", refresh+"0")
	requireKind(t, err, apierrors.KindUnauthorized, "invalid refresh token")

	// Срок refresh-токена вышел дальше допуска S/2.
	e.advance(24*time.Hour + 6*time.Minute)

	_, err = e.svc.GetNewTokenPair(ctx, "7", refresh)
	requireKind(t, err, apierrors.KindUnauthorized, "invalid refresh token")
}

func TestRegistrationRegion(t *testing.T) {
	ctrl := gomock.NewController(t)
	rs := mocks.NewMockRegionStorage(ctrl)
	e := newEnv(t, WithRegionStorage(rs))
	ctx := context.Background()

	gomock.InOrder(
		rs.EXPECT().Find(gomock.Any(), "a@x.com").Return(&models.RegionRecord{Email: "a@x.com", Region: "us"}, nil),
		rs.EXPECT().Find(gomock.Any(), "a@x.com").Return(nil, nil),
		rs.EXPECT().Find(gomock.Any(), "a@x.com").Return(nil, apierrors.Server("find file fail", context.Canceled)),
	)

	require.Equal(t, "us", e.svc.RegistrationRegion(ctx, "a@x.com"))
	require.Equal(t, "jp", e.svc.RegistrationRegion(ctx, "a@x.com"))
	require.Equal(t, "jp", e.svc.RegistrationRegion(ctx, "a@x.com"))

	require.Equal(t, "jp", newEnv(t).svc.RegistrationRegion(ctx, "a@x.com"))
}
